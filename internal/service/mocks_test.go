package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/notekeeper-api/internal/domain"
	"github.com/phrazzld/notekeeper-api/internal/store"
	"github.com/phrazzld/notekeeper-api/internal/task"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// memoryNoteStore is an in-memory store.NoteStore for service tests.
// Individual operations can be overridden via the *Fn fields.
type memoryNoteStore struct {
	mu    sync.Mutex
	notes map[uuid.UUID]*domain.Note

	CountFn  func(ctx context.Context) (int, error)
	ExistsFn func(ctx context.Context, id uuid.UUID) (bool, error)
	CreateFn func(ctx context.Context, note *domain.Note) error
}

func newMemoryNoteStore() *memoryNoteStore {
	return &memoryNoteStore{notes: make(map[uuid.UUID]*domain.Note)}
}

var _ store.NoteStore = (*memoryNoteStore)(nil)

func (s *memoryNoteStore) Create(ctx context.Context, note *domain.Note) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, note)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[note.ID]; ok {
		return store.ErrDuplicate
	}
	copied := *note
	s.notes[note.ID] = &copied
	return nil
}

func (s *memoryNoteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok {
		return nil, store.ErrNoteNotFound
	}
	copied := *note
	return &copied, nil
}

func (s *memoryNoteStore) List(ctx context.Context) ([]*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Note, 0, len(s.notes))
	for _, note := range s.notes {
		copied := *note
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedDate.Before(out[j].CreatedDate)
	})
	return out, nil
}

func (s *memoryNoteStore) Update(ctx context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[note.ID]; !ok {
		return store.ErrNoteNotFound
	}
	copied := *note
	s.notes[note.ID] = &copied
	return nil
}

func (s *memoryNoteStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return store.ErrNoteNotFound
	}
	delete(s.notes, id)
	return nil
}

func (s *memoryNoteStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.ExistsFn != nil {
		return s.ExistsFn(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.notes[id]
	return ok, nil
}

func (s *memoryNoteStore) Count(ctx context.Context) (int, error) {
	if s.CountFn != nil {
		return s.CountFn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.notes), nil
}

func (s *memoryNoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return s
}

// seed inserts a note directly, bypassing validation.
func (s *memoryNoteStore) seed(note *domain.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *note
	s.notes[note.ID] = &copied
}

// capturingRunner records submitted tasks instead of executing them.
type capturingRunner struct {
	mu        sync.Mutex
	submitted []task.Task

	SubmitFn func(ctx context.Context, t task.Task) error
}

var _ TaskRunner = (*capturingRunner)(nil)

func (r *capturingRunner) Submit(ctx context.Context, t task.Task) error {
	if r.SubmitFn != nil {
		return r.SubmitFn(ctx, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.submitted = append(r.submitted, t)
	return nil
}

func (r *capturingRunner) Submitted() []task.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]task.Task, len(r.submitted))
	copy(out, r.submitted)
	return out
}
