// Package config loads process configuration once at startup from the
// environment, following the teacher's inline-in-main style but
// centralized so cmd/abydosbot/main.go stays a thin wiring shim.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at process start.
// See design doc Section 6.
type Config struct {
	DataDir string // directory for the store file and auxiliary caches

	DiscordToken   string
	CommandPrefix  string
	WeatherChannel string // channel ID for weather-change announcements

	LLMAPIKey           string
	LLMModel            string
	LLMMonthlyUSDLimit   float64
	LLMPrice1kInputUSD   float64
	LLMPrice1kOutputUSD  float64

	DictionaryBaseURL   string
	DictionarySharedTok string

	RandomOrgAPIKey string // optional true-entropy source for incident rolls

	WebSyncURL   string
	WebSyncToken string

	// Glitch/chat-flavor knobs, carried from the original bot's config.py
	// even though flavor text itself is out of scope (§1 Non-goals). They
	// are loaded here but no other package reads them.
	GlitchForce       bool
	GlitchChance      float64
	GlitchSplitChance float64
	GlitchMaxRatio    float64
}

// Load reads .env (if present) then the environment, applying defaults
// for anything unset. Mirrors godotenv.Load's silent-if-absent style as
// used in Sergey-Bar-Alfred's gateway service.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:           getenv("ABYDOS_DATA_DIR", "./data"),
		DiscordToken:      os.Getenv("DISCORD_TOKEN"),
		CommandPrefix:     getenv("COMMAND_PREFIX", "!"),
		WeatherChannel:    os.Getenv("WEATHER_ANNOUNCE_CHANNEL_ID"),
		LLMAPIKey:         os.Getenv("ANTHROPIC_API_KEY"),
		LLMModel:          getenv("LLM_MODEL", "claude-haiku-4-5-20251001"),
		DictionaryBaseURL: os.Getenv("DICTIONARY_BASE_URL"),
		WebSyncURL:        os.Getenv("WEBSYNC_URL"),
		WebSyncToken:      os.Getenv("WEBSYNC_TOKEN"),
		RandomOrgAPIKey:   os.Getenv("RANDOM_ORG_API_KEY"),
	}

	var err error
	if cfg.LLMMonthlyUSDLimit, err = getenvFloat("LLM_MONTHLY_USD_LIMIT", 20.0); err != nil {
		return nil, err
	}
	if cfg.LLMPrice1kInputUSD, err = getenvFloat("LLM_PRICE_1K_INPUT_USD", 0.001); err != nil {
		return nil, err
	}
	if cfg.LLMPrice1kOutputUSD, err = getenvFloat("LLM_PRICE_1K_OUTPUT_USD", 0.005); err != nil {
		return nil, err
	}
	cfg.DictionarySharedTok = os.Getenv("DICTIONARY_SHARED_TOKEN")

	if cfg.GlitchForce, err = getenvBool("GLITCH_FORCE", false); err != nil {
		return nil, err
	}
	if cfg.GlitchChance, err = getenvFloat("GLITCH_CHANCE", 0.04); err != nil {
		return nil, err
	}
	if cfg.GlitchSplitChance, err = getenvFloat("GLITCH_SPLIT_CHANCE", 0.3); err != nil {
		return nil, err
	}
	if cfg.GlitchMaxRatio, err = getenvFloat("GLITCH_MAX_RATIO", 0.2); err != nil {
		return nil, err
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
