package task

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
)

// storedTask is the persisted form a MockTaskStore keeps per task.
type storedTask struct {
	id        uuid.UUID
	taskType  string
	payload   []byte
	status    TaskStatus
	errorMsg  string
	updatedAt time.Time
	original  Task
}

// MockTaskStore is an in-memory TaskStore for tests. Individual operations
// can be overridden via the *Fn fields.
type MockTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*storedTask

	SaveFn         func(ctx context.Context, task Task) error
	UpdateStatusFn func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
}

// NewMockTaskStore creates an empty mock task store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		tasks: make(map[uuid.UUID]*storedTask),
	}
}

var _ TaskStore = (*MockTaskStore)(nil)

// SaveTask persists a task in memory.
func (s *MockTaskStore) SaveTask(ctx context.Context, task Task) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, task)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.ID()] = &storedTask{
		id:        task.ID(),
		taskType:  task.Type(),
		payload:   task.Payload(),
		status:    TaskStatusPending,
		updatedAt: time.Now().UTC(),
		original:  task,
	}
	return nil
}

// UpdateTaskStatus updates the stored status of a task.
func (s *MockTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, taskID, status, errorMsg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tasks[taskID]; ok {
		t.status = status
		t.errorMsg = errorMsg
		t.updatedAt = time.Now().UTC()
	}
	return nil
}

// GetPendingTasks returns stored tasks with pending status.
func (s *MockTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	return s.tasksByStatus(TaskStatusPending, 0), nil
}

// GetProcessingTasks returns stored tasks with processing status.
func (s *MockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	return s.tasksByStatus(TaskStatusProcessing, olderThan), nil
}

// WithTx returns the store itself; the mock has no transactions.
func (s *MockTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

// TaskStatusFor reports the stored status of a task, for assertions.
func (s *MockTaskStore) TaskStatusFor(taskID uuid.UUID) (TaskStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return "", false
	}
	return t.status, true
}

// SeedTask inserts a task row directly, bypassing SaveTask, to simulate
// state left behind by a previous process.
func (s *MockTaskStore) SeedTask(id uuid.UUID, taskType string, payload []byte, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[id] = &storedTask{
		id:        id,
		taskType:  taskType,
		payload:   payload,
		status:    status,
		updatedAt: time.Now().UTC(),
	}
}

func (s *MockTaskStore) tasksByStatus(status TaskStatus, olderThan time.Duration) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)

	var out []Task
	for _, t := range s.tasks {
		if t.status != status {
			continue
		}
		if olderThan > 0 && t.updatedAt.After(cutoff) {
			continue
		}
		out = append(out, &recoveredTask{stored: *t})
	}
	return out
}

// recoveredTask is the inert Task form returned by the mock store,
// mirroring a row loaded from the database: identity, type, and payload
// only. Execution requires reconstruction by a factory.
type recoveredTask struct {
	stored storedTask
}

func (t *recoveredTask) ID() uuid.UUID      { return t.stored.id }
func (t *recoveredTask) Type() string       { return t.stored.taskType }
func (t *recoveredTask) Payload() []byte    { return t.stored.payload }
func (t *recoveredTask) Status() TaskStatus { return t.stored.status }
func (t *recoveredTask) Execute(ctx context.Context) error {
	return ErrPermanent
}
