package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"45s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"40s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Optional backends. Empty disables the feature.
	PGDSN        string `envconfig:"PG_DSN"`
	RedisAddr    string `envconfig:"REDIS_ADDR"`
	GotenbergURL string `envconfig:"GOTENBERG_URL"`

	DatasetSnapshot string        `envconfig:"DATASET_SNAPSHOT" default:"default"`
	CacheTTL        time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	ExportWarmupCron   string `envconfig:"EXPORT_WARMUP_CRON" default:"@every 30m"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	ExportLimitPerMin  int    `envconfig:"EXPORT_LIMIT_PER_MINUTE" default:"10"`
	AsynqConcurrency   int    `envconfig:"ASYNQ_CONCURRENCY" default:"4"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "pretty":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("config: RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.ExportLimitPerMin <= 0 {
		return fmt.Errorf("config: EXPORT_LIMIT_PER_MINUTE must be positive")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config: CACHE_TTL must not be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
