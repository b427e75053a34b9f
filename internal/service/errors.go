// Package service contains the business logic for notes, attachments, and
// attachment archives, sitting between the HTTP handlers and the
// persistence layers.
package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/notekeeper-api/internal/store"
)

// Common sentinel errors returned by the services. Handlers map these to
// HTTP status codes.
var (
	// ErrNoteNotFound indicates that the note does not exist
	ErrNoteNotFound = errors.New("note not found")

	// ErrAttachmentNotFound indicates that the attachment does not exist
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrArchiveNotFound indicates that the archive does not exist
	ErrArchiveNotFound = errors.New("archive not found")

	// ErrNoteLimitReached indicates the configured maximum number of notes
	// has been reached
	ErrNoteLimitReached = errors.New("note limit reached")

	// ErrAttachmentLimitReached indicates the configured maximum number of
	// attachments per note has been reached
	ErrAttachmentLimitReached = errors.New("attachment limit reached")
)

// ServiceError wraps errors from the services with operation context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_note")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
// It returns known sentinel errors directly without wrapping, and maps
// store-level not-found errors to their service-level counterparts.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrNoteNotFound) ||
		errors.Is(err, ErrAttachmentNotFound) ||
		errors.Is(err, ErrArchiveNotFound) ||
		errors.Is(err, ErrNoteLimitReached) ||
		errors.Is(err, ErrAttachmentLimitReached) {
		return err
	}

	if errors.Is(err, store.ErrNoteNotFound) {
		return ErrNoteNotFound
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
