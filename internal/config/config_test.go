package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3100", cfg.Reasoning.ServiceURL)
	assert.Equal(t, 45, cfg.Reasoning.Timeout)

	// Engine heuristics ship with the documented defaults.
	assert.Equal(t, "30s", cfg.Engine.AgentTimeout)
	assert.Equal(t, 0.8, cfg.Engine.RiskThreshold)
	assert.Equal(t, 0.8, cfg.Engine.RiskDampeningFactor)
	assert.Equal(t, 1, cfg.Engine.DisagreementMargin)
	assert.Equal(t, 0.8, cfg.Engine.DisagreementDampeningFactor)
	assert.Equal(t, 0.3, cfg.Engine.BuyThreshold)
	assert.Equal(t, -0.3, cfg.Engine.SellThreshold)
	assert.Contains(t, cfg.Engine.HighRiskAssets, "stocks")

	// Optional integrations default to disabled.
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadRejectsInvalidAgentTimeout(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("ENGINE_AGENT_TIMEOUT", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent_timeout")
}

func TestLoadRejectsBadDampeningFactor(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("ENGINE_RISK_DAMPENING_FACTOR", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "risk_dampening_factor")
}

func TestLoadRejectsNonNegativeSellThreshold(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("ENGINE_SELL_THRESHOLD", "0.1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sell_threshold")
}

func TestAgentTimeoutDuration(t *testing.T) {
	cfg := EngineConfig{AgentTimeout: "45s"}
	assert.Equal(t, "45s", cfg.AgentTimeoutDuration().String())
}

func TestConsensusTTLDurationFallsBack(t *testing.T) {
	cfg := RedisConfig{ConsensusTTL: ""}
	assert.Equal(t, "1h0m0s", cfg.ConsensusTTLDuration().String())

	cfg.ConsensusTTL = "15m"
	assert.Equal(t, "15m0s", cfg.ConsensusTTLDuration().String())
}
