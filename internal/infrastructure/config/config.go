package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Storage
	StatePath         string `env:"STATE_PATH"           envDefault:"pocketbank.db"`
	StorageQuotaBytes int64  `env:"STORAGE_QUOTA_BYTES"  envDefault:"52428800"`
	SQLiteMaxValue    int    `env:"SQLITE_MAX_VALUE"     envDefault:"262144"`

	// Redis (optional - leave empty to run without the async tier)
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// Store scheduling
	NotifyDebounce  time.Duration `env:"NOTIFY_DEBOUNCE"  envDefault:"250ms"`
	PersistDebounce time.Duration `env:"PERSIST_DEBOUNCE" envDefault:"3s"`

	// Sync client (optional - leave empty to run without sync)
	SyncURL      string        `env:"SYNC_URL"       envDefault:""`
	SyncClientID string        `env:"SYNC_CLIENT_ID" envDefault:""`
	SyncCooldown time.Duration `env:"SYNC_COOLDOWN"  envDefault:"2m"`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Alerts
	AlertDestination string `env:"ALERT_DESTINATION" envDefault:""`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
