// Package store defines the persistence interfaces consumed by the service
// layer, keeping implementations (postgres) behind narrow contracts.
package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/notekeeper-api/internal/domain"
)

// DBTX is the common interface implemented by *sql.DB and *sql.Tx,
// allowing stores to run against either a connection pool or a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// NoteStore defines the interface for note persistence.
type NoteStore interface {
	// Create saves a new note to the store.
	Create(ctx context.Context, note *domain.Note) error

	// GetByID retrieves a note by its unique ID.
	// Returns ErrNoteNotFound if the note does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error)

	// List retrieves all notes ordered by creation time.
	List(ctx context.Context) ([]*domain.Note, error)

	// Update saves changes to an existing note.
	// Returns ErrNoteNotFound if the note does not exist.
	Update(ctx context.Context, note *domain.Note) error

	// Delete removes a note by its ID.
	// Returns ErrNoteNotFound if the note does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// Exists reports whether a note with the given ID exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Count returns the total number of notes.
	Count(ctx context.Context) (int, error)

	// WithTx returns a new NoteStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) NoteStore
}
