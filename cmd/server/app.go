package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/notekeeper-api/internal/archive"
	"github.com/phrazzld/notekeeper-api/internal/config"
	"github.com/phrazzld/notekeeper-api/internal/platform/blob"
	"github.com/phrazzld/notekeeper-api/internal/platform/postgres"
	"github.com/phrazzld/notekeeper-api/internal/service"
	"github.com/phrazzld/notekeeper-api/internal/store"
	"github.com/phrazzld/notekeeper-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	noteStore store.NoteStore
	taskStore task.TaskStore
	blobStore blob.Store

	// Service interfaces
	noteService       service.NoteService
	attachmentService service.AttachmentService
	archiveService    service.ArchiveService

	// Task handling
	taskRunner *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	app.noteStore = postgres.NewPostgresNoteStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	var err error
	app.blobStore, err = blob.NewStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}
	logger.Info("blob store initialized", "backend", cfg.Storage.Backend)

	// Initialize the archive pipeline: builder, task factory, runner
	builder := archive.NewBuilder(app.blobStore, logger)

	archiveFactory, err := task.NewArchiveTaskFactory(app.noteStore, app.blobStore, builder, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive task factory: %w", err)
	}

	app.taskRunner, err = setupTaskRunner(app, archiveFactory)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	// Initialize services
	app.noteService, err = service.NewNoteService(
		app.noteStore,
		app.blobStore,
		cfg.Notes.MaxNotes,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create note service: %w", err)
	}

	app.attachmentService, err = service.NewAttachmentService(
		app.noteStore,
		app.blobStore,
		cfg.Notes.MaxAttachments,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment service: %w", err)
	}

	app.archiveService, err = service.NewArchiveService(
		app.noteStore,
		app.blobStore,
		archiveFactory,
		app.taskRunner,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupTaskRunner initializes and starts the background task processor.
// The archive factory is registered before Start so that tasks persisted by
// a previous run are reconstructed and requeued during recovery.
func setupTaskRunner(app *application, factory *task.ArchiveTaskFactory) (*task.TaskRunner, error) {
	taskRunner := task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:            app.config.Task.WorkerCount,
		QueueSize:              app.config.Task.QueueSize,
		TaskTimeout:            app.config.Task.BuildTimeout,
		StuckTaskAge:           app.config.Task.StuckTaskAge,
		StuckTaskCheckInterval: app.config.Task.StuckTaskCheckInterval,
	}, app.logger)

	taskRunner.RegisterFactory(task.TaskTypeArchiveBuild, factory)

	if err := taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	return taskRunner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop task runner
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
