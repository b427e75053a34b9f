package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// NOTEKEEPER_SERVER_PORT overrides server.port.
const envPrefix = "NOTEKEEPER"

// Load reads configuration from an optional config file and environment
// variables. Environment variables take precedence over values from the file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/notekeeper")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; env vars and defaults still apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Storage.Backend == "s3" && cfg.Storage.Region == "" {
		return nil, fmt.Errorf("invalid configuration: storage.region is required for the s3 backend")
	}

	return &cfg, nil
}

// setDefaults registers default values so a bare environment still produces
// a runnable development configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	// Registered empty so AutomaticEnv can surface it during Unmarshal;
	// validation still rejects a missing URL.
	v.SetDefault("database.url", "")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.force_path_style", false)
	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.stuck_task_age", "30m")
	v.SetDefault("task.stuck_task_check_interval", "5m")
	v.SetDefault("task.build_timeout", "2m")
	v.SetDefault("notes.max_notes", 10)
	v.SetDefault("notes.max_attachments", 3)
}
