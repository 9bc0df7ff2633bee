// Package config loads runtime configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ScientiaCapital/trading-backtesting-sub003/agent"
	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
)

// Config holds everything the daemon needs to start.
type Config struct {
	// Provider selects the inference provider, "anthropic" or "openai".
	Provider string
	// AnthropicAPIKey and OpenAIAPIKey authenticate against the selected
	// provider. Only the active provider's key is required.
	AnthropicAPIKey string
	OpenAIAPIKey    string

	// DefaultBackend is the routing fallback model identifier.
	DefaultBackend string
	// Routes maps agent roles to model identifiers, overriding the
	// built-in routing table.
	Routes map[core.AgentRole]string

	// ModelTimeout bounds a single inference call.
	ModelTimeout time.Duration

	// DailyPnLTarget is the profit target broadcast alongside daily PnL.
	DailyPnLTarget float64

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Provider:        strings.ToLower(getEnv("PROVIDER", "anthropic")),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		DefaultBackend:  getEnv("DEFAULT_BACKEND", agent.DefaultBackend),
		ModelTimeout:    getEnvDuration("MODEL_TIMEOUT", agent.DefaultModelTimeout),
		DailyPnLTarget:  getEnvFloat("DAILY_PNL_TARGET", 1000.0),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		Routes:          make(map[core.AgentRole]string),
	}

	for _, role := range []core.AgentRole{core.RoleSignal, core.RoleRisk, core.RoleExecution, core.RoleCompliance} {
		key := "ROUTE_" + strings.ToUpper(string(role))
		if v := getEnv(key, ""); v != "" {
			cfg.Routes[role] = v
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when PROVIDER=anthropic")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown PROVIDER %q", c.Provider)
	}
	if c.ModelTimeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
