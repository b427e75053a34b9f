package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/notekeeper-api/internal/domain"
	"github.com/phrazzld/notekeeper-api/internal/platform/blob"
	"github.com/phrazzld/notekeeper-api/internal/store"
)

// NoteService provides note CRUD operations.
type NoteService interface {
	// CreateNote creates a new note with the given summary and details.
	// Returns ErrNoteLimitReached when the configured maximum number of
	// notes already exists.
	CreateNote(ctx context.Context, summary, details string) (*domain.Note, error)

	// GetNote retrieves a note by its ID.
	GetNote(ctx context.Context, noteID uuid.UUID) (*domain.Note, error)

	// ListNotes retrieves all notes, oldest first.
	ListNotes(ctx context.Context) ([]*domain.Note, error)

	// UpdateNote patches a note. Nil fields are left unchanged; a call
	// with neither field set succeeds without touching the note.
	UpdateNote(ctx context.Context, noteID uuid.UUID, summary, details *string) (*domain.Note, error)

	// DeleteNote removes a note along with its attachment and archive
	// containers.
	DeleteNote(ctx context.Context, noteID uuid.UUID) error
}

// noteServiceImpl implements the NoteService interface
type noteServiceImpl struct {
	notes    store.NoteStore
	blobs    blob.Store
	maxNotes int
	logger   *slog.Logger
}

// NewNoteService creates a new NoteService.
// maxNotes caps the total number of notes; zero or negative disables the cap.
// It returns an error if any of the required dependencies are nil.
func NewNoteService(
	notes store.NoteStore,
	blobs blob.Store,
	maxNotes int,
	logger *slog.Logger,
) (NoteService, error) {
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

	return &noteServiceImpl{
		notes:    notes,
		blobs:    blobs,
		maxNotes: maxNotes,
		logger:   logger.With("component", "note_service"),
	}, nil
}

// CreateNote creates a new note after checking the total-notes cap.
// The count check and insert are not atomic; concurrent creates can
// briefly exceed the cap, which is acceptable for a soft limit.
func (s *noteServiceImpl) CreateNote(ctx context.Context, summary, details string) (*domain.Note, error) {
	if s.maxNotes > 0 {
		count, err := s.notes.Count(ctx)
		if err != nil {
			s.logger.Error("failed to count notes", "error", err)
			return nil, NewServiceError("create_note", "failed to count notes", err)
		}
		if count >= s.maxNotes {
			s.logger.Warn("note limit reached",
				"count", count,
				"max_notes", s.maxNotes)
			return nil, ErrNoteLimitReached
		}
	}

	note, err := domain.NewNote(summary, details)
	if err != nil {
		return nil, err
	}

	if err := s.notes.Create(ctx, note); err != nil {
		s.logger.Error("failed to create note",
			"error", err,
			"note_id", note.ID)
		return nil, NewServiceError("create_note", "failed to save note", err)
	}

	s.logger.Info("note created", "note_id", note.ID)
	return note, nil
}

// GetNote retrieves a note by its ID.
func (s *noteServiceImpl) GetNote(ctx context.Context, noteID uuid.UUID) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.logger.Error("failed to retrieve note",
			"error", err,
			"note_id", noteID)
		return nil, NewServiceError("get_note", "failed to retrieve note", err)
	}
	return note, nil
}

// ListNotes retrieves all notes, oldest first.
func (s *noteServiceImpl) ListNotes(ctx context.Context) ([]*domain.Note, error) {
	notes, err := s.notes.List(ctx)
	if err != nil {
		s.logger.Error("failed to list notes", "error", err)
		return nil, NewServiceError("list_notes", "failed to list notes", err)
	}
	return notes, nil
}

// UpdateNote applies the non-nil fields to a note and refreshes its
// modification time. Summary and details are patched independently.
func (s *noteServiceImpl) UpdateNote(
	ctx context.Context,
	noteID uuid.UUID,
	summary, details *string,
) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.logger.Error("failed to retrieve note for update",
			"error", err,
			"note_id", noteID)
		return nil, NewServiceError("update_note", "failed to retrieve note", err)
	}

	if summary == nil && details == nil {
		return note, nil
	}

	if summary != nil {
		if err := note.UpdateSummary(*summary); err != nil {
			return nil, err
		}
	}
	if details != nil {
		if err := note.UpdateDetails(*details); err != nil {
			return nil, err
		}
	}

	if err := s.notes.Update(ctx, note); err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.logger.Error("failed to save updated note",
			"error", err,
			"note_id", noteID)
		return nil, NewServiceError("update_note", "failed to save note", err)
	}

	s.logger.Info("note updated", "note_id", noteID)
	return note, nil
}

// DeleteNote removes a note and both of its blob containers. Container
// deletion is idempotent, so notes that never had attachments or archives
// delete cleanly.
func (s *noteServiceImpl) DeleteNote(ctx context.Context, noteID uuid.UUID) error {
	if err := s.notes.Delete(ctx, noteID); err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			return ErrNoteNotFound
		}
		s.logger.Error("failed to delete note",
			"error", err,
			"note_id", noteID)
		return NewServiceError("delete_note", "failed to delete note", err)
	}

	if err := s.blobs.DeleteContainer(ctx, domain.AttachmentContainer(noteID)); err != nil {
		s.logger.Error("failed to delete attachment container",
			"error", err,
			"note_id", noteID)
		return NewServiceError("delete_note", "failed to delete attachment container", err)
	}

	if err := s.blobs.DeleteContainer(ctx, domain.ArchiveContainer(noteID)); err != nil {
		s.logger.Error("failed to delete archive container",
			"error", err,
			"note_id", noteID)
		return NewServiceError("delete_note", "failed to delete archive container", err)
	}

	s.logger.Info("note deleted", "note_id", noteID)
	return nil
}
