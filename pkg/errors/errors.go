package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeTimeout represents a store run exceeding its budget
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypePersistence represents failures writing output artifacts
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// MonitorError represents an error raised while monitoring a store
type MonitorError struct {
	Type    ErrorType
	Store   string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *MonitorError) Error() string {
	msg := e.Message
	if e.Store != "" {
		msg = e.Store + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s - %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *MonitorError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *MonitorError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return true
	default:
		return false
	}
}

// IsType reports whether any error in err's chain is a MonitorError of type t.
func IsType(err error, t ErrorType) bool {
	var me *MonitorError
	if stderrors.As(err, &me) {
		return me.Type == t
	}
	return false
}

// New creates a new MonitorError
func New(errType ErrorType, store, message string, err error) *MonitorError {
	return &MonitorError{
		Type:    errType,
		Store:   store,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(store, message string, err error) *MonitorError {
	return New(ErrorTypeNetwork, store, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(store string, duration time.Duration) *MonitorError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, store, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(store, message string, err error) *MonitorError {
	return New(ErrorTypeParsing, store, message, err)
}

// NewTimeout creates a new timeout error
func NewTimeout(store string, budget time.Duration) *MonitorError {
	message := fmt.Sprintf("exceeded budget of %v", budget)
	return New(ErrorTypeTimeout, store, message, nil)
}

// NewCache creates a new cache error
func NewCache(store, message string, err error) *MonitorError {
	return New(ErrorTypeCache, store, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(store, message string, err error) *MonitorError {
	return New(ErrorTypePublisher, store, message, err)
}

// NewPersistence creates a new persistence error
func NewPersistence(store, message string, err error) *MonitorError {
	return New(ErrorTypePersistence, store, message, err)
}

// NewValidation creates a new validation error
func NewValidation(store, message string) *MonitorError {
	return New(ErrorTypeValidation, store, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *MonitorError {
	return New(ErrorTypeConfiguration, "", message, err)
}
