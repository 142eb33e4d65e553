// Package errs defines the typed failure kinds shared by the registry,
// cache proxy, and HTTP layer. Handlers map kinds to status codes at the
// boundary; nothing below the handlers writes HTTP responses.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	// Unauthenticated means the caller presented no credential or an
	// invalid one.
	Unauthenticated Kind = iota
	// Forbidden means the caller is authenticated but lacks the role.
	Forbidden
	// NotFound means the referenced entity does not exist.
	NotFound
	// InvalidOperation means a precondition failed (no associated agent,
	// inactive API key).
	InvalidOperation
	// Internal means a store, network, or deserialization failure.
	Internal
)

// Error is a typed failure with a caller-safe message and an optional
// underlying cause. The cause text may appear in the message for Internal
// errors, but raw credentials never do.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a typed error with an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from err, defaulting to Internal for untyped
// errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is a typed error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps a failure to its response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidOperation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to send to clients. Internal
// failures include the cause text for operator diagnosis; untyped errors
// collapse to a generic message so internals never leak by accident.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return "internal server error"
}
