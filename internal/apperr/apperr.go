// Package apperr defines the typed error taxonomy shared by services,
// repositories and handlers. Every failure a flow can surface carries a
// Kind plus a human-readable message; handlers translate the kind into an
// HTTP status in a single place instead of choosing codes ad hoc.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure. The set is closed; adding a kind means
// deciding its HTTP mapping in Status().
type Kind int

const (
	KindInternal Kind = iota
	KindConflict
	KindValidation
	KindRateLimited
	KindNotFound
	KindInvalidCode
	KindUnauthorized
	KindForbidden
	KindUnavailable
)

// Error is the single error type crossing layer boundaries.
type Error struct {
	Kind    Kind
	Message string
	Err     error // optional wrapped cause, never shown to clients
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindConflict:
		return http.StatusConflict
	case KindValidation, KindInvalidCode:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func RateLimited(msg string) *Error  { return &Error{Kind: KindRateLimited, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func InvalidCode(msg string) *Error  { return &Error{Kind: KindInvalidCode, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func Unavailable(msg string) *Error  { return &Error{Kind: KindUnavailable, Message: msg} }

// Internal wraps an unexpected cause behind a generic message so internals
// never leak to clients.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// From coerces any error into *Error, wrapping unknown ones as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal error", err)
}

// Messages kept in one place so flows and tests agree on wording. The
// confirmation-code message is deliberately ambiguous: it never reveals
// whether a code was absent or expired.
const (
	MsgEmailExists = "an item with this email already exists"
	MsgPhoneExists = "an item with this phone already exists"
	MsgWrongEnum   = "wrong enum value"
	MsgWrongCode   = "the confirmation code is either wrong or expired"
	MsgWrongPass   = "wrong password"
	MsgTooSoon     = "request to create new confirmation code is too soon, wait one minute since last code creation"
	MsgNoUser      = "user was not found"
	MsgNoEmail     = "email was not found"
)
