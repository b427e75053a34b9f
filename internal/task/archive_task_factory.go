package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/notekeeper-api/internal/archive"
	"github.com/phrazzld/notekeeper-api/internal/domain"
	"github.com/phrazzld/notekeeper-api/internal/platform/blob"
)

// ArchiveTaskFactory creates and reconstructs ArchiveBuildTask instances.
// It is registered with the TaskRunner so recovered queue entries become
// executable again after a restart.
type ArchiveTaskFactory struct {
	notes   NoteChecker
	store   blob.Store
	builder *archive.Builder
	logger  *slog.Logger
}

// NewArchiveTaskFactory creates a factory wired to the given dependencies.
func NewArchiveTaskFactory(
	notes NoteChecker,
	store blob.Store,
	builder *archive.Builder,
	logger *slog.Logger,
) (*ArchiveTaskFactory, error) {
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

	return &ArchiveTaskFactory{
		notes:   notes,
		store:   store,
		builder: builder,
		logger:  logger,
	}, nil
}

// NewTask creates a fresh archive build task for the given request.
func (f *ArchiveTaskFactory) NewTask(request *domain.ArchiveRequest) (*ArchiveBuildTask, error) {
	return NewArchiveBuildTask(request, f.notes, f.store, f.builder, f.logger)
}

var _ TaskFactory = (*ArchiveTaskFactory)(nil)

// Reconstruct builds an executable task from a persisted payload. Unknown
// fields in the payload are tolerated; a payload missing either key is a
// permanent failure and is never retried.
func (f *ArchiveTaskFactory) Reconstruct(id uuid.UUID, payload []byte) (Task, error) {
	var request domain.ArchiveRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return nil, fmt.Errorf("%w: malformed archive request payload: %v", ErrPermanent, err)
	}

	if err := request.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid archive request payload: %v", ErrPermanent, err)
	}

	t, err := NewArchiveBuildTask(&request, f.notes, f.store, f.builder, f.logger)
	if err != nil {
		return nil, err
	}

	// Keep the persisted identity so status updates hit the original row
	t.id = id
	return t, nil
}
