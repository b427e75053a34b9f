package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/notekeeper-api/internal/archive"
	"github.com/phrazzld/notekeeper-api/internal/domain"
	"github.com/phrazzld/notekeeper-api/internal/platform/blob"
)

// Common errors
var (
	ErrNilNoteChecker = errors.New("note checker cannot be nil")
	ErrNilBlobStore   = errors.New("blob store cannot be nil")
	ErrNilBuilder     = errors.New("archive builder cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
)

// NoteChecker reports whether a note still exists. The archive worker uses
// it to recognize requests whose note was deleted after they were enqueued.
type NoteChecker interface {
	Exists(ctx context.Context, noteID uuid.UUID) (bool, error)
}

// ArchiveBuildTask implements the Task interface for building a zip archive
// of a note's attachments. All state needed to complete the job is derived
// from the (noteId, archiveId) pair, so re-processing after a crash or
// redelivery is safe: the task re-lists current attachments and overwrites
// the same archive key.
type ArchiveBuildTask struct {
	id      uuid.UUID
	request domain.ArchiveRequest
	notes   NoteChecker
	store   blob.Store
	builder *archive.Builder
	logger  *slog.Logger
	status  TaskStatus
}

// NewArchiveBuildTask creates a new archive build task for the given request.
func NewArchiveBuildTask(
	request *domain.ArchiveRequest,
	notes NoteChecker,
	store blob.Store,
	builder *archive.Builder,
	logger *slog.Logger,
) (*ArchiveBuildTask, error) {
	if notes == nil {
		return nil, ErrNilNoteChecker
	}
	if store == nil {
		return nil, ErrNilBlobStore
	}
	if builder == nil {
		return nil, ErrNilBuilder
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	return &ArchiveBuildTask{
		id:      uuid.New(),
		request: *request,
		notes:   notes,
		store:   store,
		builder: builder,
		logger: logger.With(
			"task_type", TaskTypeArchiveBuild,
			"note_id", request.NoteID,
			"archive_id", request.ArchiveID,
		),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *ArchiveBuildTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ArchiveBuildTask) Type() string {
	return TaskTypeArchiveBuild
}

// Payload returns the archive request serialized as JSON
func (t *ArchiveBuildTask) Payload() []byte {
	data, err := json.Marshal(t.request)
	if err != nil {
		// If marshal fails, return an empty payload with error logged
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *ArchiveBuildTask) Status() TaskStatus {
	return t.status
}

// Execute builds the archive: validate that the note and its attachment
// container still exist, build the zip from a listing snapshot, then upload
// it to the note's archive container under the request's archive ID.
//
// A vanished note or container is a terminal no-op: the request can never
// succeed and retrying it is pointless. Store I/O errors are transient and
// wrapped accordingly so the runner requeues the task. A partial archive is
// never uploaded; the upload happens only after every attachment has been
// fully read.
func (t *ArchiveBuildTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting archive build task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("%w: task cancelled: %v", ErrTransient, err)
	}

	// 1. The note may have been deleted between request and processing
	exists, err := t.notes.Exists(ctx, t.request.NoteID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to check note existence", "error", err)
		return fmt.Errorf("%w: failed to check note existence: %v", ErrTransient, err)
	}
	if !exists {
		t.status = TaskStatusCompleted
		t.logger.Info("note no longer exists, dropping archive request")
		return nil
	}

	// 2. A note with no uploads has no attachment container
	attachmentContainer := domain.AttachmentContainer(t.request.NoteID)
	containerExists, err := t.store.ContainerExists(ctx, attachmentContainer)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to check attachment container", "error", err)
		return fmt.Errorf("%w: failed to check attachment container: %v", ErrTransient, err)
	}
	if !containerExists {
		t.status = TaskStatusCompleted
		t.logger.Info("attachment container does not exist, dropping archive request")
		return nil
	}

	// 3. Build from one listing snapshot, fail-fast on any read error
	buf, err := t.builder.Build(ctx, attachmentContainer)
	if err != nil {
		t.status = TaskStatusFailed
		if errors.Is(err, blob.ErrContainerNotFound) {
			// Deleted between the existence check and the listing
			t.status = TaskStatusCompleted
			t.logger.Info("attachment container vanished during build, dropping archive request")
			return nil
		}
		t.logger.Error("archive build failed", "error", err)
		return fmt.Errorf("%w: archive build failed: %v", ErrTransient, err)
	}

	// 4. Idempotent create; concurrent builds for the same note race here safely
	archiveContainer := domain.ArchiveContainer(t.request.NoteID)
	if err := t.store.EnsureContainer(ctx, archiveContainer); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to ensure archive container", "error", err)
		return fmt.Errorf("%w: failed to ensure archive container: %v", ErrTransient, err)
	}

	// 5. Overwrite-by-key makes redelivered requests self-healing
	size := int64(buf.Len())
	if err := t.store.Put(ctx, archiveContainer, t.request.ArchiveID, buf, size, domain.ZipContentType); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to upload archive", "error", err)
		return fmt.Errorf("%w: failed to upload archive: %v", ErrTransient, err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("archive uploaded", "bytes", size)
	return nil
}
