package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 30*time.Second, cfg.ModelTimeout)
	assert.Equal(t, 1000.0, cfg.DailyPnLTarget)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Routes)
}

func TestLoadRouteOverrides(t *testing.T) {
	t.Setenv("PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("ROUTE_SIGNAL", "claude-opus-4-20250514")
	t.Setenv("ROUTE_COMPLIANCE", "claude-3-5-haiku-20241022")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-opus-4-20250514", cfg.Routes[core.RoleSignal])
	assert.Equal(t, "claude-3-5-haiku-20241022", cfg.Routes[core.RoleCompliance])
	assert.NotContains(t, cfg.Routes, core.RoleRisk)
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "unused")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadUnknownProvider(t *testing.T) {
	t.Setenv("PROVIDER", "cohere")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown PROVIDER")
}

func TestLoadCustomTimeout(t *testing.T) {
	t.Setenv("PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("MODEL_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.ModelTimeout)
}
