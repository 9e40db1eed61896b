package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL":     "postgres://localhost:5432/gulali?sslmode=disable",
		"REDIS_URL":        "redis://localhost:6379/0",
		"ADMIN_JWT_SECRET": "test-secret-test-secret-test-sec",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "gulali-admin", cfg.AdminJWTIssuer)
	require.Equal(t, 30*time.Second, cfg.SnapshotCacheTTL)
	require.Equal(t, 60, cfg.QuoteRateLimitMax)
	require.Equal(t, time.Minute, cfg.QuoteRateWindow)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	require.Equal(t, "alerts", cfg.AlertQueue)
	require.False(t, cfg.AlertEmailEnabled)
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "9090"
	env["CATALOG_SNAPSHOT_TTL"] = "2m"
	env["QUOTE_RATE_LIMIT_MAX"] = "5"
	env["CORS_ALLOWED_ORIGINS"] = "https://gulali.id, https://admin.gulali.id"
	env["ALERT_EMAIL_ENABLED"] = "true"
	env["ALERT_EMAIL_TO"] = "ops@gulali.id,owner@gulali.id"

	cfg, err := LoadForTests(env)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, 2*time.Minute, cfg.SnapshotCacheTTL)
	require.Equal(t, 5, cfg.QuoteRateLimitMax)
	require.Equal(t, []string{"https://gulali.id", "https://admin.gulali.id"}, cfg.CORSAllowedOrigins)
	require.True(t, cfg.AlertEmailEnabled)
	require.Equal(t, []string{"ops@gulali.id", "owner@gulali.id"}, cfg.AlertEmailTo)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	env := baseEnv()
	env["DATABASE_URL"] = ""

	_, err := LoadForTests(env)
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}
