package task

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeArchiveBuild represents the task type for building attachment
	// zip archives
	TaskTypeArchiveBuild = "archive_build"
)

// Failure classification sentinels. Execute implementations wrap their
// errors with one of these so the runner can decide between redelivery and
// dropping the task.
var (
	// ErrTransient marks a failure worth retrying, e.g. object store I/O.
	// The runner resets the task to pending and requeues it.
	ErrTransient = errors.New("transient task failure")

	// ErrPermanent marks a failure that will never succeed, e.g. a malformed
	// payload. The task is marked failed and dropped to avoid poison-message
	// loops.
	ErrPermanent = errors.New("permanent task failure")
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskFactory reconstructs an executable task from its persisted form.
// The runner uses registered factories during recovery, when tasks loaded
// from the store carry only their type and payload.
type TaskFactory interface {
	// Reconstruct builds an executable task from a persisted ID and payload.
	// A payload that cannot be decoded returns an error wrapping ErrPermanent.
	Reconstruct(id uuid.UUID, payload []byte) (Task, error)
}

// TaskStore defines the interface for persisting tasks
type TaskStore interface {
	// SaveTask persists a task to the database
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks with "pending" status
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks with "processing" status
	// If olderThan is non-zero, only returns tasks that have been in this state
	// longer than the specified duration
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
