package task

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// MockTask is a minimal Task implementation for runner tests.
type MockTask struct {
	id       uuid.UUID
	taskType string
	payload  []byte
	status   TaskStatus

	// ExecuteFn overrides Execute when set.
	ExecuteFn func(ctx context.Context) error

	// executions counts how many times Execute ran.
	executions atomic.Int32
}

// NewMockTask creates a mock task with the given payload.
func NewMockTask(payload string) *MockTask {
	return &MockTask{
		id:       uuid.New(),
		taskType: "mock",
		payload:  []byte(payload),
		status:   TaskStatusPending,
	}
}

var _ Task = (*MockTask)(nil)

func (t *MockTask) ID() uuid.UUID      { return t.id }
func (t *MockTask) Type() string       { return t.taskType }
func (t *MockTask) Payload() []byte    { return t.payload }
func (t *MockTask) Status() TaskStatus { return t.status }

// Execute runs ExecuteFn if set, otherwise succeeds.
func (t *MockTask) Execute(ctx context.Context) error {
	t.executions.Add(1)
	if t.ExecuteFn != nil {
		return t.ExecuteFn(ctx)
	}
	return nil
}

// Executions reports how many times the task ran.
func (t *MockTask) Executions() int {
	return int(t.executions.Load())
}
