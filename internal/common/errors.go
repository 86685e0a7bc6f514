package common

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict") // e.g., email already registered
	ErrNotUpdated     = errors.New("resource not updated")
	ErrValidation     = errors.New("validation failed")
	ErrTooManyLogins  = errors.New("too many failed login attempts")
	ErrInternalServer = errors.New("internal server error")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrNotUpdated) {
		// The original API reported duplicates and no-op updates as 400,
		// not 409; kept for client compatibility.
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrTooManyLogins) {
		return http.StatusTooManyRequests
	}

	// A lost duplicate-check race surfaces as a driver-level duplicate key
	// error instead of our own conflict check.
	if mongo.IsDuplicateKeyError(err) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
