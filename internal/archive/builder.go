// Package archive builds zip bundles from the live contents of a note's
// attachment container.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/klauspost/compress/zip"

	"github.com/phrazzld/notekeeper-api/internal/platform/blob"
)

// Builder produces zip archives from attachment containers. It holds no
// state between builds; an archive is fully reproducible from the attachment
// set at the moment Build runs.
type Builder struct {
	store  blob.Store
	logger *slog.Logger
}

// NewBuilder creates a Builder over the given object store.
func NewBuilder(store blob.Store, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		store:  store,
		logger: logger.With(slog.String("component", "archive_builder")),
	}
}

// Build lists the non-deleted objects in the container and streams each into
// a zip entry named by its key. Entries are written in key order so the
// archive listing is deterministic. Any list or read error aborts the whole
// build; a partial archive is never returned.
//
// The archive is buffered in memory before the caller uploads it, which is
// acceptable for small attachment sets. Large sets would need a streaming
// writer piped into a chunked upload.
func (b *Builder) Build(ctx context.Context, container string) (*bytes.Buffer, error) {
	// One consistent snapshot: objects added after this call will not appear.
	infos, err := b.store.List(ctx, container, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list container %s: %w", container, err)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build cancelled: %w", err)
		}

		if err := b.addEntry(ctx, zw, container, info.Key); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	b.logger.Debug("archive built",
		slog.String("container", container),
		slog.Int("entries", len(infos)),
		slog.Int("bytes", buf.Len()))

	return buf, nil
}

// addEntry copies one object into the archive as a named entry.
func (b *Builder) addEntry(ctx context.Context, zw *zip.Writer, container, key string) error {
	rc, _, err := b.store.Get(ctx, container, key)
	if err != nil {
		return fmt.Errorf("failed to open attachment %s/%s: %w", container, key, err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			b.logger.Warn("failed to close attachment stream",
				slog.String("container", container),
				slog.String("key", key),
				slog.String("error", closeErr.Error()))
		}
	}()

	entry, err := zw.Create(key)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", key, err)
	}

	if _, err := io.Copy(entry, rc); err != nil {
		return fmt.Errorf("failed to copy attachment %s/%s into archive: %w", container, key, err)
	}

	return nil
}
