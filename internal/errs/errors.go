package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes an error so that callers (and the transport layer) can
// react without inspecting messages.
type Kind string

const (
	// KindConfiguration marks a missing credential or an external client
	// that was never configured. Fatal for the operation, not retried.
	KindConfiguration Kind = "configuration"
	// KindValidation marks a request rejected before any state mutation.
	KindValidation Kind = "validation"
	// KindUpstream marks a failure of the vector index, doc store or
	// generation service. Propagated, never silently downgraded.
	KindUpstream Kind = "upstream"
	// KindInternal marks any other unexpected failure.
	KindInternal Kind = "internal"
)

// Error is a structured error carrying its Kind alongside the message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two errors by Kind, so errors.Is comparisons against a
// constructed *Error work regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Configuration builds a configuration error.
func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// Validation builds a validation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Upstream builds an upstream service error wrapping the cause.
func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// Internal builds an internal error wrapping the cause.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the Kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
