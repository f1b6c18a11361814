package suppliers

import (
	"errors"
	"net/http"
)

// Domain errors for supplier operations.
var (
	ErrNotFound    = errors.New("supplier not found")
	ErrDuplicate   = errors.New("supplier already exists")
	ErrInvalidName = errors.New("supplier name required")
)

// MapHTTPStatus maps supplier domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidName) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
