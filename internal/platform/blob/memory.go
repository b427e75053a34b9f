package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// memoryObject holds an object's content and metadata.
type memoryObject struct {
	data         []byte
	contentType  string
	createdAt    time.Time
	lastModified time.Time
	deleted      bool
}

// MemoryStore is an in-memory implementation of the Store interface.
// It is safe for concurrent use and is the backend for tests and local
// development.
type MemoryStore struct {
	mu         sync.RWMutex
	containers map[string]map[string]*memoryObject
}

// NewMemoryStore creates a new empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		containers: make(map[string]map[string]*memoryObject),
	}
}

var _ Store = (*MemoryStore)(nil)

// EnsureContainer creates the named container if it does not exist.
func (s *MemoryStore) EnsureContainer(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.containers[name]; !ok {
		s.containers[name] = make(map[string]*memoryObject)
	}
	return nil
}

// ContainerExists reports whether the named container exists.
func (s *MemoryStore) ContainerExists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.containers[name]
	return ok, nil
}

// List returns descriptors for the objects in a container, sorted by key.
func (s *MemoryStore) List(ctx context.Context, container string, includeDeleted bool) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, ok := s.containers[container]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, container)
	}

	infos := make([]ObjectInfo, 0, len(objects))
	for key, obj := range objects {
		if obj.deleted && !includeDeleted {
			continue
		}
		infos = append(infos, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			ContentType:  obj.contentType,
			CreatedAt:    obj.createdAt,
			LastModified: obj.lastModified,
			Deleted:      obj.deleted,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Get opens a read stream for an object and reports its content type.
func (s *MemoryStore) Get(ctx context.Context, container, key string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, ok := s.containers[container]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s/%s", ErrObjectNotFound, container, key)
	}

	obj, ok := objects[key]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s/%s", ErrObjectNotFound, container, key)
	}

	// Copy so a caller reading after an overwrite sees a consistent snapshot.
	data := make([]byte, len(obj.data))
	copy(data, obj.data)

	return io.NopCloser(bytes.NewReader(data)), obj.contentType, nil
}

// Put writes an object, replacing any existing object at that key.
func (s *MemoryStore) Put(ctx context.Context, container, key string, r io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read object content: %w", err)
	}

	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.containers[container]
	if !ok {
		return fmt.Errorf("%w: %s", ErrContainerNotFound, container)
	}

	now := time.Now().UTC()
	created := now
	if existing, ok := objects[key]; ok {
		created = existing.createdAt
	}

	objects[key] = &memoryObject{
		data:         data,
		contentType:  contentType,
		createdAt:    created,
		lastModified: now,
	}
	return nil
}

// DeleteObject removes an object if it exists.
func (s *MemoryStore) DeleteObject(ctx context.Context, container, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if objects, ok := s.containers[container]; ok {
		delete(objects, key)
	}
	return nil
}

// DeleteContainer removes a container and its contents if it exists.
func (s *MemoryStore) DeleteContainer(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.containers, name)
	return nil
}

// MarkDeleted flags an object as soft-deleted without removing its content,
// mirroring object stores that retain deleted blobs for a grace period.
// Returns ErrObjectNotFound if the container or object does not exist.
func (s *MemoryStore) MarkDeleted(container, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.containers[container]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrObjectNotFound, container, key)
	}

	obj, ok := objects[key]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrObjectNotFound, container, key)
	}

	obj.deleted = true
	return nil
}
