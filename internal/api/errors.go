// Package api contains the HTTP handlers for notes, attachments, and
// attachment zip archives.
package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/notekeeper-api/internal/api/shared"
	"github.com/phrazzld/notekeeper-api/internal/domain"
	"github.com/phrazzld/notekeeper-api/internal/service"
	"github.com/phrazzld/notekeeper-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrNoteNotFound),
		errors.Is(err, service.ErrAttachmentNotFound),
		errors.Is(err, service.ErrArchiveNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Capacity limits
	case errors.Is(err, service.ErrNoteLimitReached),
		errors.Is(err, service.ErrAttachmentLimitReached):
		return http.StatusForbidden

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidSummary),
		errors.Is(err, domain.ErrInvalidDetails),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrNoteNotFound):
		return "Note not found"

	case errors.Is(err, service.ErrAttachmentNotFound):
		return "Attachment not found"

	case errors.Is(err, service.ErrArchiveNotFound):
		return "Archive not found"

	case errors.Is(err, service.ErrNoteLimitReached):
		return "Maximum number of notes reached"

	case errors.Is(err, service.ErrAttachmentLimitReached):
		return "Maximum number of attachments reached"

	case errors.Is(err, domain.ErrInvalidSummary):
		return "Invalid summary"

	case errors.Is(err, domain.ErrInvalidDetails):
		return "Invalid details"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// respondWithMappedError writes an error response using the standard
// error-to-status mapping and sanitized message.
func respondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
