package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SCHEDULER_INTERVAL", "")
	t.Setenv("APP_ENV", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, 30*time.Second, cfg.SchedulerInterval)
	assert.Equal(t, OCRProviderHTTP, cfg.OCRProvider)
	assert.False(t, cfg.NotifyPermission)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("SCHEDULER_INTERVAL", "15s")
	t.Setenv("NOTIFY_PERMISSION", "granted")
	t.Setenv("OCR_RATE_PER_MIN", "3")
	t.Setenv("PUBLIC_BASE_URL", "http://localhost:8080/")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, 15*time.Second, cfg.SchedulerInterval)
	assert.True(t, cfg.NotifyPermission)
	assert.Equal(t, 3, cfg.OCRRatePerMin)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
}

func TestFromEnv_InvalidDuration(t *testing.T) {
	t.Setenv("SCHEDULER_INTERVAL", "often")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Env:               "development",
			StorageBackend:    BackendMemory,
			OCRProvider:       OCRProviderHTTP,
			SchedulerInterval: 30 * time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"interval too long", func(c *Config) { c.SchedulerInterval = 2 * time.Minute }, true},
		{"interval too short", func(c *Config) { c.SchedulerInterval = 10 * time.Millisecond }, true},
		{"postgres without dsn", func(c *Config) { c.StorageBackend = BackendPostgres }, true},
		{"file without dir", func(c *Config) { c.StorageBackend = BackendFile }, true},
		{"unknown backend", func(c *Config) { c.StorageBackend = "redis" }, true},
		{"unknown ocr", func(c *Config) { c.OCRProvider = "tesseract" }, true},
		{"bad env", func(c *Config) { c.Env = "qa" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
