package audits

import (
	"errors"
	"net/http"

	"github.com/vantagesource/qualis/internal/scoring"
)

// Domain errors for audit operations.
var (
	ErrNotFound          = errors.New("audit not found")
	ErrDuplicate         = errors.New("audit already exists")
	ErrSupplierNotFound  = errors.New("supplier not found")
	ErrInvalidFile       = errors.New("invalid file")
	ErrFileTooLarge      = errors.New("file exceeds maximum upload size")
	ErrNotCompleted      = errors.New("extraction is not completed")
	ErrNotesRequired     = errors.New("classification notes required")
	ErrInvalidTransition = errors.New("invalid extraction status transition")
	ErrProcessing        = errors.New("extraction already in progress")
)

// MapHTTPStatus maps audit domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrSupplierNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrProcessing),
		errors.Is(err, ErrNotCompleted),
		errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrNotesRequired),
		errors.Is(err, scoring.ErrInvalidGrade):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
