package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("REDIS_ENABLED", "")

	cfg := Load()

	require.Equal(t, "1337", cfg.Port)
	require.Equal(t, "mysql", cfg.DBDriver)
	require.Equal(t, 30*24*time.Hour, cfg.JWTExpiry)
	require.False(t, cfg.RedisEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("GIN_MODE", "release")

	cfg := Load()

	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	require.True(t, cfg.RedisEnabled)
	require.Equal(t, 300, cfg.RateLimitPerMinute)
	require.True(t, cfg.IsProduction())
}
