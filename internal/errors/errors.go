// Package errors defines application-specific error types and sentinel errors.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrEngineStopped    = errors.New("engine is stopped")
	ErrEngineNotStarted = errors.New("engine is not started")
	ErrSegmentExists    = errors.New("log segment already exists")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// Sink operations reported in SinkError.
const (
	OpOpen   = "open"
	OpWrite  = "write"
	OpFlush  = "flush"
	OpRotate = "rotate"
	OpClose  = "close"
)

// SinkError represents a failed file operation on a log segment.
type SinkError struct {
	Operation string
	Path      string
	Err       error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink error: operation=%s path=%s: %v",
		e.Operation, e.Path, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// IsRetryable determines if a SinkError is retryable based on the operation type.
// A failed rotation keeps the previous segment, so retrying it on the next
// write is the normal path rather than an explicit retry.
func (e *SinkError) IsRetryable() bool {
	return e.Operation == OpWrite || e.Operation == OpFlush
}

// WriterPanic carries a value recovered from the writer goroutine.
type WriterPanic struct {
	Value any
	Stack []byte
}

func (e *WriterPanic) Error() string {
	return fmt.Sprintf("writer goroutine panicked: %v", e.Value)
}

// Retryable defines an interface for errors that can indicate if they are retryable.
type Retryable interface {
	error
	IsRetryable() bool
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var retryable Retryable
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}

	return false
}
