package blob

import (
	"context"
	"fmt"

	"github.com/phrazzld/notekeeper-api/internal/config"
)

// NewStore creates a Store implementation based on the configured backend.
func NewStore(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
