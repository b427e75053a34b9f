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
	"github.com/phrazzld/notekeeper-api/internal/task"
)

// TaskRunner defines the interface for submitting background tasks.
type TaskRunner interface {
	// Submit adds a task to the processing queue
	Submit(ctx context.Context, t task.Task) error
}

// ArchiveService is the producer side of the archive pipeline. Requesting
// an archive enqueues a durable background task and returns immediately;
// the built zip appears in the note's archive container once the worker
// finishes.
type ArchiveService interface {
	// RequestArchive enqueues a build of a zip archive containing the
	// note's current attachments and returns the ID the finished archive
	// will be stored under.
	RequestArchive(ctx context.Context, noteID uuid.UUID) (string, error)

	// ListArchives returns metadata for the note's built archives, sorted
	// by ID.
	ListArchives(ctx context.Context, noteID uuid.UUID) ([]blob.ObjectInfo, error)

	// GetArchive streams a built archive. The caller must close the
	// returned reader.
	GetArchive(ctx context.Context, noteID uuid.UUID, archiveID string) (io.ReadCloser, error)

	// DeleteArchive removes a built archive. Deleting an archive that does
	// not exist is a no-op.
	DeleteArchive(ctx context.Context, noteID uuid.UUID, archiveID string) error
}

// archiveServiceImpl implements the ArchiveService interface
type archiveServiceImpl struct {
	notes   store.NoteStore
	blobs   blob.Store
	factory *task.ArchiveTaskFactory
	runner  TaskRunner
	logger  *slog.Logger
}

// NewArchiveService creates a new ArchiveService.
// It returns an error if any of the required dependencies are nil.
func NewArchiveService(
	notes store.NoteStore,
	blobs blob.Store,
	factory *task.ArchiveTaskFactory,
	runner TaskRunner,
	logger *slog.Logger,
) (ArchiveService, error) {
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
	if factory == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "task factory cannot be nil",
		}
	}
	if runner == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "task runner cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &archiveServiceImpl{
		notes:   notes,
		blobs:   blobs,
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "archive_service"),
	}, nil
}

// requireNote returns ErrNoteNotFound unless the note exists.
func (s *archiveServiceImpl) requireNote(ctx context.Context, noteID uuid.UUID) error {
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

// RequestArchive mints a new archive ID, persists a build task for it, and
// hands the task to the runner. Once Submit returns the request survives a
// process crash: the task row is already durable and will be recovered on
// the next startup.
func (s *archiveServiceImpl) RequestArchive(ctx context.Context, noteID uuid.UUID) (string, error) {
	if err := s.requireNote(ctx, noteID); err != nil {
		return "", err
	}

	request, err := domain.NewArchiveRequest(noteID)
	if err != nil {
		return "", NewServiceError("request_archive", "failed to create archive request", err)
	}

	buildTask, err := s.factory.NewTask(request)
	if err != nil {
		s.logger.Error("failed to create archive build task",
			"error", err,
			"note_id", noteID)
		return "", NewServiceError("request_archive", "failed to create build task", err)
	}

	if err := s.runner.Submit(ctx, buildTask); err != nil {
		s.logger.Error("failed to submit archive build task",
			"error", err,
			"note_id", noteID,
			"archive_id", request.ArchiveID)
		return "", NewServiceError("request_archive", "failed to enqueue build task", err)
	}

	s.logger.Info("archive build requested",
		"note_id", noteID,
		"archive_id", request.ArchiveID,
		"task_id", buildTask.ID())
	return request.ArchiveID, nil
}

// ListArchives returns metadata for the note's built archives. Archives are
// always zip files, so the content type is reported as application/zip
// regardless of what the backend stored.
func (s *archiveServiceImpl) ListArchives(ctx context.Context, noteID uuid.UUID) ([]blob.ObjectInfo, error) {
	if err := s.requireNote(ctx, noteID); err != nil {
		return nil, err
	}

	infos, err := s.blobs.List(ctx, domain.ArchiveContainer(noteID), false)
	if err != nil {
		if errors.Is(err, blob.ErrContainerNotFound) {
			return []blob.ObjectInfo{}, nil
		}
		s.logger.Error("failed to list archives",
			"error", err,
			"note_id", noteID)
		return nil, NewServiceError("list_archives", "failed to list archives", err)
	}

	for i := range infos {
		infos[i].ContentType = domain.ZipContentType
	}
	return infos, nil
}

// GetArchive streams a built archive's content.
func (s *archiveServiceImpl) GetArchive(
	ctx context.Context,
	noteID uuid.UUID,
	archiveID string,
) (io.ReadCloser, error) {
	if err := s.requireNote(ctx, noteID); err != nil {
		return nil, err
	}

	rc, _, err := s.blobs.Get(ctx, domain.ArchiveContainer(noteID), archiveID)
	if err != nil {
		if errors.Is(err, blob.ErrContainerNotFound) || errors.Is(err, blob.ErrObjectNotFound) {
			return nil, ErrArchiveNotFound
		}
		s.logger.Error("failed to get archive",
			"error", err,
			"note_id", noteID,
			"archive_id", archiveID)
		return nil, NewServiceError("get_archive", "failed to get archive", err)
	}

	return rc, nil
}

// DeleteArchive removes a built archive. Missing containers and missing
// archives are both treated as success.
func (s *archiveServiceImpl) DeleteArchive(ctx context.Context, noteID uuid.UUID, archiveID string) error {
	if err := s.requireNote(ctx, noteID); err != nil {
		return err
	}

	err := s.blobs.DeleteObject(ctx, domain.ArchiveContainer(noteID), archiveID)
	if err != nil && !errors.Is(err, blob.ErrContainerNotFound) && !errors.Is(err, blob.ErrObjectNotFound) {
		s.logger.Error("failed to delete archive",
			"error", err,
			"note_id", noteID,
			"archive_id", archiveID)
		return NewServiceError("delete_archive", "failed to delete archive", err)
	}

	s.logger.Info("archive deleted",
		"note_id", noteID,
		"archive_id", archiveID)
	return nil
}
