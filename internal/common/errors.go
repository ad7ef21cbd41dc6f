package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error and decides the HTTP status it is reported with.
type Kind string

const (
	KindUnauthorized    Kind = "unauthorized"
	KindInvalidInput    Kind = "invalid_input"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindUpstreamFailure Kind = "upstream_failure"
	KindUnexpected      Kind = "unexpected"
)

func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error carrying the status it should be reported with.
// Details holds per-field messages for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind, so errors.Is(err, common.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind && t.Message == ""
	}
	return false
}

func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// Sentinels for errors.Is checks. They carry no message so they match every error of their kind.
var (
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrInvalidInput    = &Error{Kind: KindInvalidInput}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrUpstreamFailure = &Error{Kind: KindUpstreamFailure}
	ErrUnexpected      = &Error{Kind: KindUnexpected}
)

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

func InvalidFields(fields map[string]string) *Error {
	return &Error{Kind: KindInvalidInput, Message: "validation failed", Details: fields}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func UpstreamFailure(message string, cause error) *Error {
	return &Error{Kind: KindUpstreamFailure, Message: message, cause: cause}
}

func Unexpected(message string, cause error) *Error {
	return &Error{Kind: KindUnexpected, Message: message, cause: cause}
}

// AsError converts any error into an *Error. ValidationError becomes InvalidInput and
// anything unrecognised becomes Unexpected.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var v ValidationError
	if errors.As(err, &v) {
		return InvalidFields(v.Errors)
	}

	return Unexpected("the server encountered a problem and could not process your request", err)
}
