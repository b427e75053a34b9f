package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// TaskTimeout bounds a single task execution. Zero means no timeout.
	TaskTimeout time.Duration

	// RetryDelay is how long a transiently failed task waits before being
	// requeued. If zero, defaults to 30 seconds.
	RetryDelay time.Duration

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		TaskTimeout:            2 * time.Minute,
		RetryDelay:             30 * time.Second,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner manages background task processing. Tasks are persisted before
// they are enqueued, so delivery is at-least-once: a crash between persist
// and completion is healed by Recover on the next start, and a task may as a
// result be executed more than once. Task implementations must be safe to
// re-run.
type TaskRunner struct {
	store      TaskStore
	factories  map[string]TaskFactory
	taskChan   chan Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      store,
		factories:  make(map[string]TaskFactory),
		taskChan:   make(chan Task, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		wg:         sync.WaitGroup{},
		config:     config,
		logger:     logger,
	}
}

// RegisterFactory registers a factory used to reconstruct executable tasks
// of the given type during recovery. Must be called before Start.
func (r *TaskRunner) RegisterFactory(taskType string, factory TaskFactory) {
	r.factories[taskType] = factory
}

// Submit persists a task and hands it to the worker pool. Once SaveTask
// succeeds the task is accepted: if the in-memory queue is full it stays
// pending in the store and is requeued by Recover on the next start, so
// the caller never gets an error for a task that will still run.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	// Save task to database first
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	// Then add to in-memory queue
	select {
	case r.taskChan <- task:
	default:
		r.logger.Warn("task queue is full, deferring to recovery",
			"task_id", task.ID(),
			"task_type", task.Type())
	}
	return nil
}

// Start initializes the worker pool and begins processing tasks
func (r *TaskRunner) Start() error {
	// Recover unfinished tasks from previous runs
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	// Start worker goroutines
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	// Start goroutine to check for stuck tasks periodically
	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the task runner
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
}

// Recover loads unfinished tasks from the database and requeues them.
// Pending tasks are requeued as-is; processing tasks (interrupted by a
// crash) are reset to pending first. Tasks whose payload can no longer be
// reconstructed are marked failed and dropped.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pendingTasks, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processingTasks, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pendingTasks),
		"processing_count", len(processingTasks))

	for _, t := range pendingTasks {
		r.requeueRecovered(ctx, t, false)
	}

	for _, t := range processingTasks {
		r.requeueRecovered(ctx, t, true)
	}

	return nil
}

// requeueRecovered resolves a persisted task into an executable one and puts
// it back on the queue, optionally resetting its status first.
func (r *TaskRunner) requeueRecovered(ctx context.Context, t Task, resetStatus bool) {
	resolved, err := r.resolve(t)
	if err != nil {
		// Malformed or unknown payload: never retried
		r.logger.Error("dropping unrecoverable task",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to mark unrecoverable task failed",
				"task_id", t.ID(),
				"error", updateErr)
		}
		return
	}

	if resetStatus {
		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				"task_id", t.ID(),
				"task_type", t.Type(),
				"error", err)
			return
		}
	}

	select {
	case r.taskChan <- resolved:
		// Successfully requeued
	default:
		r.logger.Error("failed to requeue task, queue is full",
			"task_id", t.ID(),
			"task_type", t.Type())
	}
}

// resolve returns an executable form of the task. Tasks recovered from the
// store carry only type and payload; a registered factory rebuilds them.
func (r *TaskRunner) resolve(t Task) (Task, error) {
	factory, ok := r.factories[t.Type()]
	if !ok {
		return nil, fmt.Errorf("%w: no factory registered for task type %q", ErrPermanent, t.Type())
	}
	return factory.Reconstruct(t.ID(), t.Payload())
}

// worker processes tasks from the queue
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-r.taskChan:
			if !ok {
				r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}

			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(task Task, workerID int) {
	ctx := context.Background()
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	// Update task status to processing
	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to update task status to processing", "error", err)
		return
	}

	logger.Info("processing task")

	// Bound execution so one slow build cannot occupy a worker forever.
	// A timed-out task falls into the transient-retry path below.
	execCtx := ctx
	if r.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.config.TaskTimeout)
		defer cancel()
	}

	err := task.Execute(execCtx)

	switch {
	case err == nil:
		logger.Info("task completed successfully")
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusCompleted, ""); updateErr != nil {
			logger.Error("failed to update task status to completed", "error", updateErr)
		}

	case errors.Is(err, ErrTransient) || errors.Is(execCtx.Err(), context.DeadlineExceeded):
		// Redelivery: back to pending, requeued after a delay
		logger.Warn("task failed transiently, scheduling retry", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusPending, err.Error()); updateErr != nil {
			logger.Error("failed to reset task status to pending", "error", updateErr)
			return
		}
		r.scheduleRetry(task)

	default:
		// Permanent failure: marked failed and dropped
		logger.Error("task execution failed", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update task status to failed", "error", updateErr)
		}
	}
}

// scheduleRetry requeues a task after the configured retry delay.
func (r *TaskRunner) scheduleRetry(task Task) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		select {
		case <-r.ctx.Done():
			// Shutting down; the pending task will be recovered on restart
			return
		case <-time.After(r.config.RetryDelay):
		}

		select {
		case r.taskChan <- task:
			r.logger.Debug("requeued task for retry", "task_id", task.ID())
		default:
			r.logger.Error("failed to requeue task for retry, queue is full",
				"task_id", task.ID(),
				"task_type", task.Type())
		}
	}()
}

// stuckTaskMonitor periodically checks for tasks that have been in "processing"
// state for too long and resets them
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stuckTasks, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks", "error", err)
				continue
			}

			if len(stuckTasks) == 0 {
				continue
			}

			r.logger.Info("found stuck tasks", "count", len(stuckTasks))

			for _, t := range stuckTasks {
				r.requeueRecovered(ctx, t, true)
			}
		}
	}
}
