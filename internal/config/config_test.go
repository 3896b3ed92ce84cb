package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("TRAILBOOK_PRIMARY.ENV", "local")
	t.Setenv("TRAILBOOK_SERVER.PORT", "8080")
	t.Setenv("TRAILBOOK_SERVER.READ_TIMEOUT", "10")
	t.Setenv("TRAILBOOK_SERVER.WRITE_TIMEOUT", "10")
	t.Setenv("TRAILBOOK_SERVER.IDLE_TIMEOUT", "60")
	t.Setenv("TRAILBOOK_SERVER.CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	t.Setenv("TRAILBOOK_DATABASE.HOST", "localhost")
	t.Setenv("TRAILBOOK_DATABASE.PORT", "5432")
	t.Setenv("TRAILBOOK_DATABASE.USER", "trailbook")
	t.Setenv("TRAILBOOK_DATABASE.PASSWORD", "trailbook")
	t.Setenv("TRAILBOOK_DATABASE.NAME", "trailbook")
	t.Setenv("TRAILBOOK_DATABASE.SSL_MODE", "disable")
	t.Setenv("TRAILBOOK_DATABASE.MAX_OPEN_CONNS", "10")
	t.Setenv("TRAILBOOK_DATABASE.MAX_IDLE_CONNS", "5")
	t.Setenv("TRAILBOOK_DATABASE.CONN_MAX_LIFETIME", "300")
	t.Setenv("TRAILBOOK_DATABASE.CONN_MAX_IDLE_TIME", "60")
	t.Setenv("TRAILBOOK_REDIS.ADDRESS", "localhost:6379")
	t.Setenv("TRAILBOOK_AUTH.SECRET_KEY", "test-secret-key-at-least-32-bytes-long")
	t.Setenv("TRAILBOOK_AUTH.TOKEN_TTL_HOURS", "24")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Primary.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
}

func TestLoadAppliesRateLimitDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Server.RateLimitRequests)
	assert.Equal(t, 60, cfg.Server.RateLimitWindowMinutes)
}

func TestLoadRespectsExplicitRateLimit(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TRAILBOOK_SERVER.RATE_LIMIT_REQUESTS", "10")
	t.Setenv("TRAILBOOK_SERVER.RATE_LIMIT_WINDOW_MINUTES", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Server.RateLimitRequests)
	assert.Equal(t, 1, cfg.Server.RateLimitWindowMinutes)
}

func TestLoadForcesObservabilityIdentity(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TRAILBOOK_PRIMARY.ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "trailbook", cfg.Observability.ServiceName)
	assert.Equal(t, "production", cfg.Observability.Environment)
	assert.True(t, cfg.Observability.IsProduction())
}
