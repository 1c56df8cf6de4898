// Package apperr defines the application error taxonomy shared across layers.
package apperr

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound signals a fetch-by-id miss.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals rejected user input.
	ErrValidation = errors.New("validation failed")
	// ErrRemote signals that the analysis service was unreachable or
	// returned a failure.
	ErrRemote = errors.New("analysis service error")
	// ErrBadFormat signals a malformed metadata payload. Always recovered
	// locally; logged, never surfaced to the user.
	ErrBadFormat = errors.New("malformed metadata payload")
)

// RemoteError carries the service-provided failure detail when available.
// Callers render Detail to the user instead of the raw transport error.
type RemoteError struct {
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return ErrRemote.Error()
}

// Unwrap makes errors.Is(err, ErrRemote) hold for every RemoteError.
func (e *RemoteError) Unwrap() error { return ErrRemote }

// Remote wraps err with an optional user-facing detail message.
func Remote(detail string, err error) *RemoteError {
	return &RemoteError{Detail: detail, Err: err}
}

// ValidationError reports one or more input violations.
type ValidationError struct {
	Messages []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Messages, "; ")
}

// Unwrap makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError from messages.
func Invalid(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}
