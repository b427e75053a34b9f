package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/notekeeper-api/internal/platform/blob"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// readEntries extracts entry name -> content from a built archive.
func readEntries(t *testing.T, buf *bytes.Buffer) map[string]string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	entries := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = string(data)
	}
	return entries
}

func TestBuilderBuild(t *testing.T) {
	t.Parallel()

	store := blob.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureContainer(ctx, "note-1"))
	require.NoError(t, store.Put(ctx, "note-1", "a.png", strings.NewReader("0123456789"), 10, "image/png"))
	require.NoError(t, store.Put(ctx, "note-1", "b.png", strings.NewReader("01234567890123456789"), 20, "image/png"))

	builder := NewBuilder(store, discardLogger())

	buf, err := builder.Build(ctx, "note-1")
	require.NoError(t, err)

	entries := readEntries(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "0123456789", entries["a.png"])
	assert.Equal(t, "01234567890123456789", entries["b.png"])
}

func TestBuilderBuildEmptyContainer(t *testing.T) {
	t.Parallel()

	store := blob.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureContainer(ctx, "note-1"))

	builder := NewBuilder(store, discardLogger())

	buf, err := builder.Build(ctx, "note-1")
	require.NoError(t, err)
	assert.Empty(t, readEntries(t, buf))
}

func TestBuilderBuildMissingContainer(t *testing.T) {
	t.Parallel()

	builder := NewBuilder(blob.NewMemoryStore(), discardLogger())

	_, err := builder.Build(context.Background(), "missing")
	assert.ErrorIs(t, err, blob.ErrContainerNotFound)
}

func TestBuilderBuildExcludesSoftDeleted(t *testing.T) {
	t.Parallel()

	store := blob.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureContainer(ctx, "note-1"))
	require.NoError(t, store.Put(ctx, "note-1", "keep.png", strings.NewReader("kk"), 2, "image/png"))
	require.NoError(t, store.Put(ctx, "note-1", "gone.png", strings.NewReader("gg"), 2, "image/png"))
	require.NoError(t, store.MarkDeleted("note-1", "gone.png"))

	builder := NewBuilder(store, discardLogger())

	buf, err := builder.Build(ctx, "note-1")
	require.NoError(t, err)

	entries := readEntries(t, buf)
	require.Len(t, entries, 1)
	assert.Contains(t, entries, "keep.png")
}

func TestBuilderBuildDeterministicOrder(t *testing.T) {
	t.Parallel()

	store := blob.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureContainer(ctx, "note-1"))
	require.NoError(t, store.Put(ctx, "note-1", "c.png", strings.NewReader("c"), 1, "image/png"))
	require.NoError(t, store.Put(ctx, "note-1", "a.png", strings.NewReader("a"), 1, "image/png"))
	require.NoError(t, store.Put(ctx, "note-1", "b.png", strings.NewReader("b"), 1, "image/png"))

	builder := NewBuilder(store, discardLogger())

	buf, err := builder.Build(ctx, "note-1")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, names)
}

// deletingStore wraps a MemoryStore and soft-deletes one key as a side
// effect of the first read, racing a delete against an in-flight build.
type deletingStore struct {
	*blob.MemoryStore
	container string
	deleteKey string
	deleted   bool
}

func (d *deletingStore) Get(ctx context.Context, container, key string) (io.ReadCloser, string, error) {
	if !d.deleted {
		d.deleted = true
		if err := d.MemoryStore.MarkDeleted(d.container, d.deleteKey); err != nil {
			return nil, "", err
		}
	}
	return d.MemoryStore.Get(ctx, container, key)
}

func TestBuilderBuildSnapshotsListing(t *testing.T) {
	t.Parallel()

	store := blob.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureContainer(ctx, "note-1"))
	require.NoError(t, store.Put(ctx, "note-1", "a.png", strings.NewReader("aa"), 2, "image/png"))
	require.NoError(t, store.Put(ctx, "note-1", "b.png", strings.NewReader("bb"), 2, "image/png"))

	// b.png is soft-deleted after the listing but before its download;
	// the archive still reflects the set as listed
	wrapped := &deletingStore{MemoryStore: store, container: "note-1", deleteKey: "b.png"}
	builder := NewBuilder(wrapped, discardLogger())

	buf, err := builder.Build(ctx, "note-1")
	require.NoError(t, err)

	entries := readEntries(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "aa", entries["a.png"])
	assert.Equal(t, "bb", entries["b.png"])
}

// failingStore wraps a Store and injects a read failure for one key.
type failingStore struct {
	blob.Store
	failKey string
}

func (f *failingStore) Get(ctx context.Context, container, key string) (io.ReadCloser, string, error) {
	if key == f.failKey {
		return nil, "", errors.New("injected read failure")
	}
	return f.Store.Get(ctx, container, key)
}

func TestBuilderBuildFailsFast(t *testing.T) {
	t.Parallel()

	store := blob.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureContainer(ctx, "note-1"))
	require.NoError(t, store.Put(ctx, "note-1", "a.png", strings.NewReader("aa"), 2, "image/png"))
	require.NoError(t, store.Put(ctx, "note-1", "b.png", strings.NewReader("bb"), 2, "image/png"))

	builder := NewBuilder(&failingStore{Store: store, failKey: "b.png"}, discardLogger())

	// The whole build aborts even though a.png was readable
	_, err := builder.Build(ctx, "note-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected read failure")
}

func TestBuilderBuildCancelled(t *testing.T) {
	t.Parallel()

	store := blob.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureContainer(ctx, "note-1"))
	require.NoError(t, store.Put(ctx, "note-1", "a.png", strings.NewReader("aa"), 2, "image/png"))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	builder := NewBuilder(store, discardLogger())

	_, err := builder.Build(cancelled, "note-1")
	assert.Error(t, err)
}
