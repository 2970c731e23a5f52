package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is matched by a TransportError once every attempt failed.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrUnexpectedShape marks a response that decoded but lacks an expected
	// field, or could not be decoded at all.
	ErrUnexpectedShape = errors.New("unexpected response shape")
)

// TransportError is returned when a GET could not complete at the transport
// level (connection, TLS, timeout, body read) on any attempt. HTTP error
// statuses never produce a TransportError.
type TransportError struct {
	URL      string
	Attempts int
	Err      error

	exhausted bool
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for %s after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports ErrRetryExhausted for errors produced after the final attempt.
func (e *TransportError) Is(target error) bool {
	return target == ErrRetryExhausted && e.exhausted
}

// Shape wraps ErrUnexpectedShape with the offending field and source.
func Shape(source, field string) error {
	return fmt.Errorf("%w: %s: missing or invalid %q", ErrUnexpectedShape, source, field)
}
