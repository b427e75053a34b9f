package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Notes    NotesConfig    `mapstructure:"notes" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// StorageConfig selects and configures the object store backend holding
// attachment and archive containers.
type StorageConfig struct {
	// Backend selects the object store implementation.
	Backend string `mapstructure:"backend" validate:"required,oneof=memory s3"`

	// S3 connection settings, required when Backend is "s3".
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`

	// ForcePathStyle is needed for S3-compatible stores such as MinIO.
	ForcePathStyle bool `mapstructure:"force_path_style"`
}

// TaskConfig contains settings for the background archive pipeline.
type TaskConfig struct {
	WorkerCount            int           `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize              int           `mapstructure:"queue_size" validate:"required,gt=0"`
	StuckTaskAge           time.Duration `mapstructure:"stuck_task_age" validate:"required"`
	StuckTaskCheckInterval time.Duration `mapstructure:"stuck_task_check_interval" validate:"required"`

	// BuildTimeout bounds a single archive build. A build that exceeds it is
	// abandoned without uploading a partial result and requeued.
	BuildTimeout time.Duration `mapstructure:"build_timeout" validate:"required"`
}

// NotesConfig contains the note and attachment capacity limits.
type NotesConfig struct {
	MaxNotes       int `mapstructure:"max_notes" validate:"required,gt=0"`
	MaxAttachments int `mapstructure:"max_attachments" validate:"required,gt=0"`
}
