package publisher

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher implements Publisher using a capped Redis stream
type RedisPublisher struct {
	client          *redis.Client
	stream          string
	streamMaxLength int64
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, stream string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		stream:          stream,
		streamMaxLength: int64(streamMaxLength),
	}
}

// Ping checks the connection
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Publish adds the message to the stream, trimming it to roughly the
// configured maximum length.
func (p *RedisPublisher) Publish(ctx context.Context, store string, message []byte) error {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.streamMaxLength,
		Approx: true,
		Values: map[string]interface{}{
			"store":   store,
			"listing": string(message),
		},
	}).Err()
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
