// Package config provides typed configuration for the scraper, loaded from
// the environment. Required fields are enforced at construction time so the
// rest of the program never probes a loosely-typed bag of named values.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix for all environment variables, e.g.
// CARGURUS_SESSION_COOKIE.
const EnvPrefix = "cargurus"

// Config is the complete application configuration.
type Config struct {
	// SessionCookie is the JSESSIONID value used to authenticate requests.
	SessionCookie string `envconfig:"SESSION_COOKIE"`

	// BaseURL is the price-trends endpoint.
	BaseURL string `envconfig:"BASE_URL" default:"https://www.cargurus.com/research/price-trends"`

	// OutputDir is where generated CSV files are written.
	OutputDir string `envconfig:"OUTPUT_DIR" default:"output"`

	// HTTPTimeout bounds each upstream request.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// CourtesyRate is the pacing between chunk fetches in requests per
	// second. The first request is never delayed.
	CourtesyRate float64 `envconfig:"COURTESY_RATE" default:"1"`

	// RetryAttempts enables bounded retries of transient transport
	// failures when greater than zero. Default is no retrying.
	RetryAttempts int `envconfig:"RETRY_ATTEMPTS" default:"0"`

	// Timezone is the location used to convert upstream epoch-millisecond
	// timestamps to calendar dates.
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`

	Logging LoggingConfig
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`    // debug, info, warn, error
	Format     string `envconfig:"LOG_FORMAT" default:"text"`   // text, json
	Output     string `envconfig:"LOG_OUTPUT" default:"stderr"` // stdout, stderr, file
	FilePath   string `envconfig:"LOG_FILE"`
	MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE" default:"10"`
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`
	MaxAgeDays int    `envconfig:"LOG_MAX_AGE" default:"7"`
	Compress   bool   `envconfig:"LOG_COMPRESS" default:"false"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints. The session cookie is intentionally not
// required here; the CLI accepts it as a flag and re-validates before running.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be greater than 0")
	}
	if c.CourtesyRate <= 0 {
		return fmt.Errorf("courtesy_rate must be greater than 0")
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry_attempts cannot be negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone is not a valid location: %w", err)
	}
	return c.Logging.Validate()
}

// Validate checks the logging configuration.
func (lc *LoggingConfig) Validate() error {
	switch lc.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	switch lc.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be one of text, json")
	}
	switch lc.Output {
	case "stdout", "stderr":
	case "file":
		if lc.FilePath == "" {
			return fmt.Errorf("logging.file_path is required when output is 'file'")
		}
	default:
		return fmt.Errorf("logging.output must be one of stdout, stderr, file")
	}
	return nil
}

// Location resolves the configured timezone. Validate guarantees this
// succeeds on a validated config.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
