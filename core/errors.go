package core

import (
	"errors"
	"fmt"
)

// ErrInvalidLifecycle is returned when a lifecycle operation is invoked out
// of order: Process before Initialize, Initialize twice, or Process after
// Shutdown. It marks a programmer error and callers should fail fast rather
// than recover.
var ErrInvalidLifecycle = errors.New("invalid agent lifecycle")

// InferenceError reports that an inference backend was unreachable, timed
// out, or returned a transport-level failure. The underlying cause is
// preserved for errors.Is / errors.As inspection.
type InferenceError struct {
	Backend string
	Err     error
}

// Error implements error.
func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference backend %q: %v", e.Backend, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *InferenceError) Unwrap() error { return e.Err }

// MalformedResponseError reports that a backend replied but the content could
// not be decoded into the expected shape. Callers must treat it as an
// inference failure, never as "no signal".
type MalformedResponseError struct {
	Raw string
	Err error
}

// Error implements error.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

// Unwrap exposes the underlying decode error.
func (e *MalformedResponseError) Unwrap() error { return e.Err }

// PublishError reports that the broadcast coordinator was unreachable or
// rejected an event. The fan-out helpers log and discard it; the diagnostic
// status path surfaces it.
type PublishError struct {
	Channel string
	Err     error
}

// Error implements error.
func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to channel %q: %v", e.Channel, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *PublishError) Unwrap() error { return e.Err }
