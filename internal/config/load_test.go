package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Not parallel: Load reads process environment.
	t.Setenv("NOTEKEEPER_DATABASE_URL", "postgres://localhost:5432/notekeeper")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 2, cfg.Task.WorkerCount)
	assert.Equal(t, 100, cfg.Task.QueueSize)
	assert.Equal(t, 30*time.Minute, cfg.Task.StuckTaskAge)
	assert.Equal(t, 2*time.Minute, cfg.Task.BuildTimeout)
	assert.Equal(t, 10, cfg.Notes.MaxNotes)
	assert.Equal(t, 3, cfg.Notes.MaxAttachments)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NOTEKEEPER_DATABASE_URL", "postgres://localhost:5432/notekeeper")
	t.Setenv("NOTEKEEPER_SERVER_PORT", "9090")
	t.Setenv("NOTEKEEPER_SERVER_LOG_LEVEL", "debug")
	t.Setenv("NOTEKEEPER_NOTES_MAX_ATTACHMENTS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 5, cfg.Notes.MaxAttachments)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("NOTEKEEPER_DATABASE_URL", "postgres://localhost:5432/notekeeper")

	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("NOTEKEEPER_SERVER_LOG_LEVEL", "loud")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad storage backend", func(t *testing.T) {
		t.Setenv("NOTEKEEPER_STORAGE_BACKEND", "tape")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("s3 backend requires region", func(t *testing.T) {
		t.Setenv("NOTEKEEPER_STORAGE_BACKEND", "s3")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.region")
	})
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("NOTEKEEPER_DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}
