// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer. Packages wrap these so a single mapper can
// turn any failure into a stable status and error code.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnknownRole  = errors.New("unknown role")
	ErrSessionStore = errors.New("session store unavailable")
	ErrPersistence  = errors.New("persistence unavailable")
)

// Error codes surfaced to clients. They are part of the API contract.
const (
	CodeNotFound     = "not_found"
	CodeDuplicate    = "duplicate"
	CodeValidation   = "validation"
	CodeForbidden    = "forbidden"
	CodeUnauthorized = "unauthorized"
	CodeUnknownRole  = "unknown_role"
	CodeSessionStore = "session_store"
	CodePersistence  = "persistence"
	CodeInternal     = "internal"
)

// Classify maps an error to its HTTP status and error code.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict, CodeDuplicate
	case errors.Is(err, ErrUnknownRole):
		return http.StatusInternalServerError, CodeUnknownRole
	case errors.Is(err, ErrSessionStore):
		return http.StatusInternalServerError, CodeSessionStore
	case errors.Is(err, ErrPersistence):
		return http.StatusInternalServerError, CodePersistence
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// RespondError maps domain errors to JSON error responses. Server faults never
// leak their cause to the client.
func RespondError(w http.ResponseWriter, err error) {
	status, code := Classify(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	Error(w, status, code, message)
}
