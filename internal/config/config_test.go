package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAbydosEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ABYDOS_DATA_DIR", "DISCORD_TOKEN", "COMMAND_PREFIX", "WEATHER_ANNOUNCE_CHANNEL_ID",
		"ANTHROPIC_API_KEY", "LLM_MODEL", "LLM_MONTHLY_USD_LIMIT", "LLM_PRICE_1K_INPUT_USD",
		"LLM_PRICE_1K_OUTPUT_USD", "DICTIONARY_BASE_URL", "DICTIONARY_SHARED_TOKEN",
		"WEBSYNC_URL", "WEBSYNC_TOKEN", "GLITCH_FORCE", "GLITCH_CHANCE", "GLITCH_SPLIT_CHANCE",
		"GLITCH_MAX_RATIO", "RANDOM_ORG_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadRequiresDiscordToken(t *testing.T) {
	clearAbydosEnv(t)
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearAbydosEnv(t)
	t.Setenv("DISCORD_TOKEN", "tok-123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, 20.0, cfg.LLMMonthlyUSDLimit)
	assert.Equal(t, 0.04, cfg.GlitchChance)
	assert.False(t, cfg.GlitchForce)
}

func TestLoadReadsOverridesAndParsesTypedValues(t *testing.T) {
	clearAbydosEnv(t)
	t.Setenv("DISCORD_TOKEN", "tok-123")
	t.Setenv("COMMAND_PREFIX", "~")
	t.Setenv("LLM_MONTHLY_USD_LIMIT", "42.5")
	t.Setenv("GLITCH_FORCE", "true")
	t.Setenv("GLITCH_CHANCE", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "~", cfg.CommandPrefix)
	assert.Equal(t, 42.5, cfg.LLMMonthlyUSDLimit)
	assert.True(t, cfg.GlitchForce)
	assert.Equal(t, 0.5, cfg.GlitchChance)
}

func TestLoadRejectsUnparsableFloat(t *testing.T) {
	clearAbydosEnv(t)
	t.Setenv("DISCORD_TOKEN", "tok-123")
	t.Setenv("LLM_MONTHLY_USD_LIMIT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
