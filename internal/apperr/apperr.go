// Package apperr carries the classified errors raised by the core services.
// The boundary layer maps each kind to a transport outcome; the core never
// formats user-facing messages itself.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for deterministic handling at the boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindConflict
	KindUnauthorized
)

// Error is a classified application error.
type Error struct {
	Kind Kind
	Code string // stable machine-readable code, e.g. "card_not_found"
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return "application error"
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error wrapping err.
func New(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

// NotFound builds a not-found error with a formatted message.
func NotFound(code, format string, args ...any) *Error {
	return New(KindNotFound, code, fmt.Errorf(format, args...))
}

// InvalidInput builds an invalid-input error with a formatted message.
func InvalidInput(code, format string, args ...any) *Error {
	return New(KindInvalidInput, code, fmt.Errorf(format, args...))
}

// Conflict builds a conflict error with a formatted message.
func Conflict(code, format string, args ...any) *Error {
	return New(KindConflict, code, fmt.Errorf(format, args...))
}

// Unauthorized builds an unauthorized error with a formatted message.
func Unauthorized(code, format string, args ...any) *Error {
	return New(KindUnauthorized, code, fmt.Errorf(format, args...))
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the stable code of err, or "" for unclassified errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is classified not-found.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsInvalidInput reports whether err is classified invalid-input.
func IsInvalidInput(err error) bool { return KindOf(err) == KindInvalidInput }

// HTTPStatus maps an error to the HTTP status the boundary should answer
// with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
