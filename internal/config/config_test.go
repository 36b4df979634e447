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

	assert.Equal(t, "8000", cfg.AppPort)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Zero(t, cfg.TokenSweepInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MILAGRE_APP_PORT", "9000")
	t.Setenv("MILAGRE_DATABASE_DSN", "postgres://localhost/milagre")
	t.Setenv("MILAGRE_TOKEN_TTL", "48h")
	t.Setenv("MILAGRE_TOKEN_SWEEP_INTERVAL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, "postgres://localhost/milagre", cfg.DatabaseDSN)
	assert.Equal(t, 48*time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.Hour, cfg.TokenSweepInterval)
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("MILAGRE_TOKEN_TTL", "-1h")

	_, err := Load()
	assert.Error(t, err)
}
