package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CSRF_SECRET", "csrf-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, int64(10<<20), cfg.UploadMaxBytes)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.UploadsEnabled())
}

func TestLoadConfigRequiresCSRFSecret(t *testing.T) {
	t.Setenv("CSRF_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadWorkerConfigSkipsCSRFSecret(t *testing.T) {
	t.Setenv("CSRF_SECRET", "")
	t.Setenv("AUDIT_RETENTION_DAYS", "30")

	cfg, err := LoadWorkerConfig()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.AuditRetentionDays)

	t.Setenv("JWT_SECRET", "short")
	_, err = LoadWorkerConfig()
	require.Error(t, err)
}

func TestLoadConfigRejectsShortJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "short")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigRejectsUnknownLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "LOG_LEVEL")
}

func TestRedisOptionsFollowConfig(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "4")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	opts := cfg.Redis()
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 4, opts.DB)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("S3_BUCKET", "lumen-media")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.UploadsEnabled())
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
}
