package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "NOTIFIER", "ACCESS_TOKEN_TTL", "BCRYPT_COST", "SEED_DEMO"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	require.Equal(t, ":8080", cfg.Addr())
	require.Empty(t, cfg.DatabaseURL)
	require.Equal(t, NotifierLog, cfg.Notifier)
	require.Equal(t, 2*time.Hour, cfg.AccessTokenTTL)
	require.Equal(t, 10, cfg.BcryptCost)
	require.False(t, cfg.SeedDemo)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/auction")
	t.Setenv("NOTIFIER", "Redis")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("SEED_DEMO", "yes")

	cfg := Load()
	require.Equal(t, ":9090", cfg.Addr())
	require.Equal(t, "postgres://u:p@db:5432/auction", cfg.DatabaseURL)
	require.Equal(t, NotifierRedis, cfg.Notifier)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 10, cfg.BcryptCost, "invalid ints fall back to the default")
	require.True(t, cfg.SeedDemo)
}
