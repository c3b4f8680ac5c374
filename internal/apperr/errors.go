// Package apperr defines the error taxonomy every component returns
// across its boundary, per the core's error handling design.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the core's eleven surfaced kinds.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindPrecondition      Kind = "precondition"
	KindUnprocessable     Kind = "unprocessable"
	KindGone              Kind = "gone"
	KindRateLimited       Kind = "rate_limited"
	KindUnavailable       Kind = "unavailable"
	KindInternal          Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindValidation:        http.StatusBadRequest,
	KindNotFound:          http.StatusNotFound,
	KindForbidden:         http.StatusForbidden,
	KindConflict:          http.StatusConflict,
	KindInvalidTransition: http.StatusBadRequest,
	KindPrecondition:      http.StatusBadRequest,
	KindUnprocessable:     http.StatusUnprocessableEntity,
	KindGone:              http.StatusGone,
	KindRateLimited:       http.StatusTooManyRequests,
	KindUnavailable:       http.StatusServiceUnavailable,
	KindInternal:          http.StatusInternalServerError,
}

// Error is the typed error every component boundary returns.
type Error struct {
	Kind       Kind
	Message    string
	Details    map[string]interface{}
	RetryAfter int // seconds, only meaningful for KindRateLimited/KindUnavailable
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status code this error kind maps to.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func WithDetails(kind Kind, message string, details map[string]interface{}) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

func RateLimited(message string, retryAfterSeconds int) *Error {
	return &Error{Kind: KindRateLimited, Message: message, RetryAfter: retryAfterSeconds}
}

func Unavailable(message string, retryAfterSeconds int) *Error {
	return &Error{Kind: KindUnavailable, Message: message, RetryAfter: retryAfterSeconds}
}

func InvalidTransition(from, to, entity string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot transition %s from %q to %q", entity, from, to),
		Details: map[string]interface{}{"current_state": from, "requested_state": to},
	}
}

// As recovers an *Error from a wrapped error chain, defaulting to
// KindInternal with the detail suppressed when the error is unclassified.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindInternal, Message: "internal error", cause: err}
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
