package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/notekeeper-api/internal/domain"
	"github.com/phrazzld/notekeeper-api/internal/platform/blob"
	"github.com/phrazzld/notekeeper-api/internal/store"
)

// AttachmentService manages the binary attachments of a note. Attachments
// live in a per-note object storage container named after the note's ID.
type AttachmentService interface {
	// Upload stores an attachment under the given ID, creating the note's
	// attachment container on first use. It reports whether the attachment
	// was newly created (true) or an existing one was overwritten (false).
	// Returns ErrAttachmentLimitReached when adding a new attachment would
	// exceed the configured per-note cap.
	Upload(
		ctx context.Context,
		noteID uuid.UUID,
		attachmentID string,
		content io.Reader,
		size int64,
		contentType string,
	) (created bool, err error)

	// List returns metadata for the note's attachments, sorted by ID.
	// Soft-deleted attachments are excluded.
	List(ctx context.Context, noteID uuid.UUID) ([]blob.ObjectInfo, error)

	// Get streams an attachment's content. The caller must close the
	// returned reader.
	Get(ctx context.Context, noteID uuid.UUID, attachmentID string) (io.ReadCloser, string, error)

	// Delete removes an attachment. Deleting an attachment that does not
	// exist is a no-op.
	Delete(ctx context.Context, noteID uuid.UUID, attachmentID string) error
}

// attachmentServiceImpl implements the AttachmentService interface
type attachmentServiceImpl struct {
	notes          store.NoteStore
	blobs          blob.Store
	maxAttachments int
	logger         *slog.Logger
}

// NewAttachmentService creates a new AttachmentService.
// maxAttachments caps the number of attachments per note; zero or negative
// disables the cap. It returns an error if any required dependency is nil.
func NewAttachmentService(
	notes store.NoteStore,
	blobs blob.Store,
	maxAttachments int,
	logger *slog.Logger,
) (AttachmentService, error) {
	if notes == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "note store cannot be nil",
		}
	}
	if blobs == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "blob store cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &attachmentServiceImpl{
		notes:          notes,
		blobs:          blobs,
		maxAttachments: maxAttachments,
		logger:         logger.With("component", "attachment_service"),
	}, nil
}

// requireNote returns ErrNoteNotFound unless the note exists.
func (s *attachmentServiceImpl) requireNote(ctx context.Context, noteID uuid.UUID) error {
	exists, err := s.notes.Exists(ctx, noteID)
	if err != nil {
		s.logger.Error("failed to check note existence",
			"error", err,
			"note_id", noteID)
		return NewServiceError("check_note", "failed to check note existence", err)
	}
	if !exists {
		return ErrNoteNotFound
	}
	return nil
}

// Upload stores an attachment in the note's container.
// The cap check counts current attachments before writing and is not atomic
// with the write; concurrent uploads can briefly exceed the cap, which is
// acceptable for a soft limit. Overwriting an existing attachment never
// counts against the cap.
func (s *attachmentServiceImpl) Upload(
	ctx context.Context,
	noteID uuid.UUID,
	attachmentID string,
	content io.Reader,
	size int64,
	contentType string,
) (bool, error) {
	if attachmentID == "" {
		return false, domain.ErrInvalidID
	}

	if err := s.requireNote(ctx, noteID); err != nil {
		return false, err
	}

	container := domain.AttachmentContainer(noteID)
	if err := s.blobs.EnsureContainer(ctx, container); err != nil {
		s.logger.Error("failed to ensure attachment container",
			"error", err,
			"note_id", noteID)
		return false, NewServiceError("upload_attachment", "failed to ensure container", err)
	}

	infos, err := s.blobs.List(ctx, container, false)
	if err != nil {
		s.logger.Error("failed to list attachments",
			"error", err,
			"note_id", noteID)
		return false, NewServiceError("upload_attachment", "failed to list attachments", err)
	}

	exists := false
	others := 0
	for _, info := range infos {
		if info.Key == attachmentID {
			exists = true
		} else {
			others++
		}
	}

	if !exists && s.maxAttachments > 0 && others >= s.maxAttachments {
		s.logger.Warn("attachment limit reached",
			"note_id", noteID,
			"count", others,
			"max_attachments", s.maxAttachments)
		return false, ErrAttachmentLimitReached
	}

	if err := s.blobs.Put(ctx, container, attachmentID, content, size, contentType); err != nil {
		s.logger.Error("failed to store attachment",
			"error", err,
			"note_id", noteID,
			"attachment_id", attachmentID)
		return false, NewServiceError("upload_attachment", "failed to store attachment", err)
	}

	s.logger.Info("attachment stored",
		"note_id", noteID,
		"attachment_id", attachmentID,
		"bytes", size,
		"created", !exists)
	return !exists, nil
}

// List returns metadata for the note's attachments.
// A note that never had an attachment uploaded has no container; that is
// reported as an empty list, not an error.
func (s *attachmentServiceImpl) List(ctx context.Context, noteID uuid.UUID) ([]blob.ObjectInfo, error) {
	if err := s.requireNote(ctx, noteID); err != nil {
		return nil, err
	}

	infos, err := s.blobs.List(ctx, domain.AttachmentContainer(noteID), false)
	if err != nil {
		if errors.Is(err, blob.ErrContainerNotFound) {
			return []blob.ObjectInfo{}, nil
		}
		s.logger.Error("failed to list attachments",
			"error", err,
			"note_id", noteID)
		return nil, NewServiceError("list_attachments", "failed to list attachments", err)
	}

	return infos, nil
}

// Get streams an attachment's content along with its content type.
func (s *attachmentServiceImpl) Get(
	ctx context.Context,
	noteID uuid.UUID,
	attachmentID string,
) (io.ReadCloser, string, error) {
	if err := s.requireNote(ctx, noteID); err != nil {
		return nil, "", err
	}

	rc, contentType, err := s.blobs.Get(ctx, domain.AttachmentContainer(noteID), attachmentID)
	if err != nil {
		if errors.Is(err, blob.ErrContainerNotFound) || errors.Is(err, blob.ErrObjectNotFound) {
			return nil, "", ErrAttachmentNotFound
		}
		s.logger.Error("failed to get attachment",
			"error", err,
			"note_id", noteID,
			"attachment_id", attachmentID)
		return nil, "", NewServiceError("get_attachment", "failed to get attachment", err)
	}

	return rc, contentType, nil
}

// Delete removes an attachment from the note's container. Missing
// containers and missing attachments are both treated as success.
func (s *attachmentServiceImpl) Delete(ctx context.Context, noteID uuid.UUID, attachmentID string) error {
	if err := s.requireNote(ctx, noteID); err != nil {
		return err
	}

	err := s.blobs.DeleteObject(ctx, domain.AttachmentContainer(noteID), attachmentID)
	if err != nil && !errors.Is(err, blob.ErrContainerNotFound) && !errors.Is(err, blob.ErrObjectNotFound) {
		s.logger.Error("failed to delete attachment",
			"error", err,
			"note_id", noteID,
			"attachment_id", attachmentID)
		return NewServiceError("delete_attachment", "failed to delete attachment", err)
	}

	s.logger.Info("attachment deleted",
		"note_id", noteID,
		"attachment_id", attachmentID)
	return nil
}
