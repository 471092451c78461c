package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.SessionCookie)
	assert.Equal(t, "https://www.cargurus.com/research/price-trends", cfg.BaseURL)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 1.0, cfg.CourtesyRate)
	assert.Equal(t, 0, cfg.RetryAttempts)
	assert.Equal(t, "UTC", cfg.Timezone)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CARGURUS_SESSION_COOKIE", "abc123")
	t.Setenv("CARGURUS_OUTPUT_DIR", "/tmp/exports")
	t.Setenv("CARGURUS_HTTP_TIMEOUT", "45s")
	t.Setenv("CARGURUS_COURTESY_RATE", "0.5")
	t.Setenv("CARGURUS_RETRY_ATTEMPTS", "3")
	t.Setenv("CARGURUS_TIMEZONE", "America/New_York")
	t.Setenv("CARGURUS_LOG_LEVEL", "debug")
	t.Setenv("CARGURUS_LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.SessionCookie)
	assert.Equal(t, "/tmp/exports", cfg.OutputDir)
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 0.5, cfg.CourtesyRate)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, "America/New_York", cfg.Timezone)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BaseURL:      "https://www.cargurus.com/research/price-trends",
			OutputDir:    "output",
			HTTPTimeout:  30 * time.Second,
			CourtesyRate: 1,
			Timezone:     "UTC",
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
				Output: "stderr",
			},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("session cookie not required", func(t *testing.T) {
		cfg := valid()
		cfg.SessionCookie = ""
		assert.NoError(t, cfg.Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"empty base URL", func(c *Config) { c.BaseURL = "" }, "base_url"},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, "output_dir"},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, "http_timeout"},
		{"zero courtesy rate", func(c *Config) { c.CourtesyRate = 0 }, "courtesy_rate"},
		{"negative retries", func(c *Config) { c.RetryAttempts = -1 }, "retry_attempts"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad log output", func(c *Config) { c.Logging.Output = "syslog" }, "logging.output"},
		{"file output without path", func(c *Config) { c.Logging.Output = "file" }, "logging.file_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "America/New_York"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}
