package service

import (
	"errors"
	"net/http"
)

// Error is a service failure with an HTTP status attached, so handlers can
// surface validation (400) and not-found (404) failures distinctly from
// internal ones.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func badRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

func notFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// StatusOf maps an error to the HTTP status handlers should return.
// Anything without an explicit status is an internal failure.
func StatusOf(err error) int {
	var se *Error
	if errors.As(err, &se) {
		return se.Status
	}
	return http.StatusInternalServerError
}
