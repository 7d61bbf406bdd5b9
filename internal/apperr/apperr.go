// Package apperr is the error taxonomy shared by every domain operation.
// Services fail fast with one of these; the HTTP layer serializes them
// uniformly.
package apperr

import (
	"errors"
	"net/http"
)

// Error carries an HTTP-style status alongside the message and optional
// structured sub-errors.
type Error struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// WithDetails returns a copy carrying structured sub-errors
func (e *Error) WithDetails(details ...string) *Error {
	clone := *e
	clone.Details = append(clone.Details, details...)
	return &clone
}

func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func Authentication(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func Authorization(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// Dependency marks a failure in an external collaborator (email delivery)
// after the caller's own state is settled.
func Dependency(message string) *Error {
	return &Error{Status: http.StatusBadGateway, Message: message}
}

func Internal(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message}
}

// From extracts an *Error from err, wrapping unknown errors as Internal so
// no raw error text leaks to clients.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal server error")
}

// IsStatus reports whether err carries the given HTTP status
func IsStatus(err error, status int) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Status == status
}
