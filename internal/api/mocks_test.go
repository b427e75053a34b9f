package api

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/phrazzld/notekeeper-api/internal/domain"
	"github.com/phrazzld/notekeeper-api/internal/platform/blob"
	"github.com/phrazzld/notekeeper-api/internal/service"
)

// mockNoteService implements service.NoteService with overridable functions.
type mockNoteService struct {
	CreateNoteFn func(ctx context.Context, summary, details string) (*domain.Note, error)
	GetNoteFn    func(ctx context.Context, noteID uuid.UUID) (*domain.Note, error)
	ListNotesFn  func(ctx context.Context) ([]*domain.Note, error)
	UpdateNoteFn func(ctx context.Context, noteID uuid.UUID, summary, details *string) (*domain.Note, error)
	DeleteNoteFn func(ctx context.Context, noteID uuid.UUID) error
}

var _ service.NoteService = (*mockNoteService)(nil)

func (m *mockNoteService) CreateNote(ctx context.Context, summary, details string) (*domain.Note, error) {
	return m.CreateNoteFn(ctx, summary, details)
}

func (m *mockNoteService) GetNote(ctx context.Context, noteID uuid.UUID) (*domain.Note, error) {
	return m.GetNoteFn(ctx, noteID)
}

func (m *mockNoteService) ListNotes(ctx context.Context) ([]*domain.Note, error) {
	return m.ListNotesFn(ctx)
}

func (m *mockNoteService) UpdateNote(
	ctx context.Context,
	noteID uuid.UUID,
	summary, details *string,
) (*domain.Note, error) {
	return m.UpdateNoteFn(ctx, noteID, summary, details)
}

func (m *mockNoteService) DeleteNote(ctx context.Context, noteID uuid.UUID) error {
	return m.DeleteNoteFn(ctx, noteID)
}

// mockAttachmentService implements service.AttachmentService with
// overridable functions.
type mockAttachmentService struct {
	UploadFn func(ctx context.Context, noteID uuid.UUID, attachmentID string, content io.Reader, size int64, contentType string) (bool, error)
	ListFn   func(ctx context.Context, noteID uuid.UUID) ([]blob.ObjectInfo, error)
	GetFn    func(ctx context.Context, noteID uuid.UUID, attachmentID string) (io.ReadCloser, string, error)
	DeleteFn func(ctx context.Context, noteID uuid.UUID, attachmentID string) error
}

var _ service.AttachmentService = (*mockAttachmentService)(nil)

func (m *mockAttachmentService) Upload(
	ctx context.Context,
	noteID uuid.UUID,
	attachmentID string,
	content io.Reader,
	size int64,
	contentType string,
) (bool, error) {
	return m.UploadFn(ctx, noteID, attachmentID, content, size, contentType)
}

func (m *mockAttachmentService) List(ctx context.Context, noteID uuid.UUID) ([]blob.ObjectInfo, error) {
	return m.ListFn(ctx, noteID)
}

func (m *mockAttachmentService) Get(
	ctx context.Context,
	noteID uuid.UUID,
	attachmentID string,
) (io.ReadCloser, string, error) {
	return m.GetFn(ctx, noteID, attachmentID)
}

func (m *mockAttachmentService) Delete(ctx context.Context, noteID uuid.UUID, attachmentID string) error {
	return m.DeleteFn(ctx, noteID, attachmentID)
}

// mockArchiveService implements service.ArchiveService with overridable
// functions.
type mockArchiveService struct {
	RequestArchiveFn func(ctx context.Context, noteID uuid.UUID) (string, error)
	ListArchivesFn   func(ctx context.Context, noteID uuid.UUID) ([]blob.ObjectInfo, error)
	GetArchiveFn     func(ctx context.Context, noteID uuid.UUID, archiveID string) (io.ReadCloser, error)
	DeleteArchiveFn  func(ctx context.Context, noteID uuid.UUID, archiveID string) error
}

var _ service.ArchiveService = (*mockArchiveService)(nil)

func (m *mockArchiveService) RequestArchive(ctx context.Context, noteID uuid.UUID) (string, error) {
	return m.RequestArchiveFn(ctx, noteID)
}

func (m *mockArchiveService) ListArchives(ctx context.Context, noteID uuid.UUID) ([]blob.ObjectInfo, error) {
	return m.ListArchivesFn(ctx, noteID)
}

func (m *mockArchiveService) GetArchive(
	ctx context.Context,
	noteID uuid.UUID,
	archiveID string,
) (io.ReadCloser, error) {
	return m.GetArchiveFn(ctx, noteID, archiveID)
}

func (m *mockArchiveService) DeleteArchive(ctx context.Context, noteID uuid.UUID, archiveID string) error {
	return m.DeleteArchiveFn(ctx, noteID, archiveID)
}
