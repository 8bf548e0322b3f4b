package utils

import (
	"errors"
	"net/http"
)

// ErrorKind classifies failures surfaced to callers.
type ErrorKind int

const (
	KindStore ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

// AppError is a failure with a caller-facing message.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Status maps the kind to an HTTP status code.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func ValidationError(msg string) error { return &AppError{Kind: KindValidation, Message: msg} }
func Unauthenticated(msg string) error { return &AppError{Kind: KindUnauthenticated, Message: msg} }
func Forbidden(msg string) error { return &AppError{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error { return &AppError{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error { return &AppError{Kind: KindConflict, Message: msg} }

// StoreError wraps an underlying store failure. The message is what callers see.
func StoreError(msg string, err error) error {
	return &AppError{Kind: KindStore, Message: msg, Err: err}
}

// KindOf returns the kind of err, treating unknown errors as store failures.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}
