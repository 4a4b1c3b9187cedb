package publisher

import "context"

// Publisher represents a service for publishing found listings
type Publisher interface {
	// Publish appends a message for a store to the listings stream
	Publish(ctx context.Context, store string, message []byte) error

	// Close closes the publisher connection
	Close() error
}
