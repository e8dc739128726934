package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "local", cfg.ProviderURITemplate)

	// Key lifecycle policy defaults
	assert.Equal(t, 2160*time.Hour, cfg.KeyMaxAge)
	assert.Equal(t, time.Hour, cfg.KeyMinRotationInterval)

	// Batch executor defaults
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10, cfg.BatchMaxConcurrentCalls)
	assert.Equal(t, 3, cfg.BatchMaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.BatchRetryInitialInterval)

	// Cache defaults
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 1024, cfg.CacheCompressionThreshold)

	assert.Equal(t, "keyring", cfg.MetricsNamespace)
	assert.Equal(t, 8081, cfg.MetricsPort)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("KEY_MAX_AGE_HOURS", "720")
	t.Setenv("BATCH_SIZE", "50")
	t.Setenv("BATCH_MAX_CONCURRENT_CALLS", "4")
	t.Setenv("CACHE_TTL_MINUTES", "5")
	t.Setenv("SYSTEM_VERSION", "1.2.3")

	cfg := Load()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 720*time.Hour, cfg.KeyMaxAge)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 4, cfg.BatchMaxConcurrentCalls)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "1.2.3", cfg.SystemVersion)
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		want     string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"error", "release"},
		{"unknown", "release"},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, cfg.GetGinMode())
		})
	}
}
