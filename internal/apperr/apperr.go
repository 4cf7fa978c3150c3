// Package apperr defines the application error taxonomy. Every error that
// crosses the service boundary is one of these types; the HTTP error boundary
// maps them to status codes and the response envelope.
package apperr

import (
	"errors"
	"net/http"
)

// Machine-readable error codes returned in the response envelope.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeAuth       = "AUTH_ERROR"
	CodePermission = "PERMISSION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL_ERROR"
)

// Error is the base application error. It carries a human message, a machine
// code, the HTTP status it serializes to, and optional structured details.
type Error struct {
	Message string
	Code    string
	Status  int
	Details any
}

func (e *Error) Error() string { return e.Message }

// Validation returns a 400 error for malformed or missing input and
// business-rule violations such as a duplicate email.
func Validation(message string, details ...any) *Error {
	if message == "" {
		message = "Validation failed"
	}
	e := &Error{Message: message, Code: CodeValidation, Status: http.StatusBadRequest}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// Auth returns a 401 error for credential, token, or session failures.
func Auth(message string) *Error {
	if message == "" {
		message = "Authentication failed"
	}
	return &Error{Message: message, Code: CodeAuth, Status: http.StatusUnauthorized}
}

// Permission returns a 403 error for an authenticated caller with an
// insufficient role.
func Permission(message string, details ...any) *Error {
	if message == "" {
		message = "Permission denied"
	}
	e := &Error{Message: message, Code: CodePermission, Status: http.StatusForbidden}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// NotFound returns a 404 error for an absent referenced entity.
func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{Message: message, Code: CodeNotFound, Status: http.StatusNotFound}
}

// IsCode reports whether err is (or wraps) an *Error with the given code.
func IsCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
