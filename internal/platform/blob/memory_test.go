package blob

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/phrazzld/notekeeper-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreContainerLifecycle(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	exists, err := store.ContainerExists(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.EnsureContainer(ctx, "c1"))

	exists, err = store.ContainerExists(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, exists)

	// Idempotent create does not disturb existing contents
	require.NoError(t, store.Put(ctx, "c1", "a.txt", strings.NewReader("hello"), 5, "text/plain"))
	require.NoError(t, store.EnsureContainer(ctx, "c1"))

	infos, err := store.List(ctx, "c1", false)
	require.NoError(t, err)
	assert.Len(t, infos, 1)

	require.NoError(t, store.DeleteContainer(ctx, "c1"))
	exists, err = store.ContainerExists(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting a missing container is not an error
	assert.NoError(t, store.DeleteContainer(ctx, "c1"))
}

func TestMemoryStoreEnsureContainerConcurrent(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.EnsureContainer(ctx, "shared")
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	exists, err := store.ContainerExists(ctx, "shared")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryStorePutGetOverwrite(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureContainer(ctx, "c1"))

	require.NoError(t, store.Put(ctx, "c1", "a.png", strings.NewReader("0123456789"), 10, "image/png"))

	rc, contentType, err := store.Get(ctx, "c1", "a.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	assert.Equal(t, "0123456789", string(data))
	assert.Equal(t, "image/png", contentType)

	// Overwrite replaces content and content type but preserves creation time
	before, err := store.List(ctx, "c1", false)
	require.NoError(t, err)
	require.Len(t, before, 1)

	require.NoError(t, store.Put(ctx, "c1", "a.png", strings.NewReader("new"), 3, "text/plain"))

	after, err := store.List(ctx, "c1", false)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, int64(3), after[0].Size)
	assert.Equal(t, "text/plain", after[0].ContentType)
	assert.Equal(t, before[0].CreatedAt, after[0].CreatedAt)

	// Size mismatch is rejected
	err = store.Put(ctx, "c1", "b.png", strings.NewReader("abc"), 5, "image/png")
	assert.Error(t, err)

	// Get from missing container/object
	_, _, err = store.Get(ctx, "missing", "a.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	_, _, err = store.Get(ctx, "c1", "missing")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// Put into a missing container fails
	err = store.Put(ctx, "missing", "a.png", strings.NewReader("x"), 1, "text/plain")
	assert.ErrorIs(t, err, ErrContainerNotFound)
}

func TestMemoryStoreListFiltersSoftDeleted(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureContainer(ctx, "c1"))

	require.NoError(t, store.Put(ctx, "c1", "a.png", strings.NewReader("aa"), 2, "image/png"))
	require.NoError(t, store.Put(ctx, "c1", "b.png", strings.NewReader("bb"), 2, "image/png"))
	require.NoError(t, store.MarkDeleted("c1", "b.png"))

	infos, err := store.List(ctx, "c1", false)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "a.png", infos[0].Key)

	all, err := store.List(ctx, "c1", true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[1].Deleted)

	// Listing a missing container fails
	_, err = store.List(ctx, "missing", false)
	assert.ErrorIs(t, err, ErrContainerNotFound)

	// Listing is sorted by key
	require.NoError(t, store.Put(ctx, "c1", "0first.png", strings.NewReader("x"), 1, "image/png"))
	infos, err = store.List(ctx, "c1", false)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "0first.png", infos[0].Key)
}

func TestMemoryStoreDeleteObject(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureContainer(ctx, "c1"))
	require.NoError(t, store.Put(ctx, "c1", "a.png", strings.NewReader("aa"), 2, "image/png"))

	require.NoError(t, store.DeleteObject(ctx, "c1", "a.png"))
	_, _, err := store.Get(ctx, "c1", "a.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// Idempotent towards missing object and container
	assert.NoError(t, store.DeleteObject(ctx, "c1", "a.png"))
	assert.NoError(t, store.DeleteObject(ctx, "missing", "a.png"))
}

func TestNewStoreFactory(t *testing.T) {
	t.Parallel()

	store, err := NewStore(context.Background(), config.StorageConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = NewStore(context.Background(), config.StorageConfig{Backend: "tape"})
	assert.Error(t, err)
}
