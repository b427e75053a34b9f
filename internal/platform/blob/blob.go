// Package blob provides typed access to the object store holding per-note
// attachment and archive containers. A container is a namespace scoping a
// related set of objects; it must exist before any object write, and creation
// is idempotent under concurrent callers.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// Common errors returned by Store implementations.
var (
	// ErrContainerNotFound is returned when the named container does not exist.
	ErrContainerNotFound = errors.New("container not found")

	// ErrObjectNotFound is returned when the requested object does not exist.
	ErrObjectNotFound = errors.New("object not found")
)

// ObjectInfo describes a stored object without its content.
type ObjectInfo struct {
	// Key is the object's name within its container.
	Key string

	// Size is the content length in bytes.
	Size int64

	// ContentType is the MIME type recorded at upload time.
	ContentType string

	CreatedAt    time.Time
	LastModified time.Time

	// Deleted marks a soft-deleted object. Soft-deleted objects are retained
	// by the store but excluded from listings unless explicitly requested.
	Deleted bool
}

// Store is the gateway to the object store. Implementations must be safe for
// concurrent use: correctness of the archive pipeline relies on idempotent
// container creation and overwrite-by-key rather than locking.
type Store interface {
	// EnsureContainer creates the named container if it does not exist.
	// Concurrent callers observe no error and agree the container exists
	// after the call returns.
	EnsureContainer(ctx context.Context, name string) error

	// ContainerExists reports whether the named container exists.
	ContainerExists(ctx context.Context, name string) (bool, error)

	// List returns descriptors for the objects in a container, excluding
	// soft-deleted objects unless includeDeleted is set. The listing is one
	// consistent snapshot; a failure mid-listing aborts the whole operation.
	// Returns ErrContainerNotFound if the container does not exist.
	List(ctx context.Context, container string, includeDeleted bool) ([]ObjectInfo, error)

	// Get opens a read stream for an object and reports its content type.
	// The caller owns the returned ReadCloser.
	// Returns ErrObjectNotFound if the container or object does not exist.
	Get(ctx context.Context, container, key string) (io.ReadCloser, string, error)

	// Put writes an object, replacing any existing object at that key.
	// The container must exist.
	Put(ctx context.Context, container, key string, r io.Reader, size int64, contentType string) error

	// DeleteObject removes an object if it exists. Deleting a missing object
	// or a missing container is not an error.
	DeleteObject(ctx context.Context, container, key string) error

	// DeleteContainer removes a container and its contents if it exists.
	// Deleting a missing container is not an error.
	DeleteContainer(ctx context.Context, name string) error
}
