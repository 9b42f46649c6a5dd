package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string `koanf:"provider"`

	Anthropic  AnthropicConfig  `koanf:"anthropic"`
	OpenAI     OpenAIConfig     `koanf:"openai"`
	Gemini     GeminiConfig     `koanf:"gemini"`
	OpenRouter OpenRouterConfig `koanf:"openrouter"`
	Retry      RetryConfig      `koanf:"retry"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`

	// Timeout bounds a single provider attempt. Zero disables it.
	Timeout time.Duration `koanf:"timeout"`
}

type AnthropicConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

type GeminiConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts"`
	InitialWait time.Duration `koanf:"initial_wait"`
	MaxWait     time.Duration `koanf:"max_wait"`
	Multiplier  float64       `koanf:"multiplier"`
}

// RateLimitConfig caps outbound request rate across all callers of one
// provider. A zero PerSecond disables limiting.
type RateLimitConfig struct {
	PerSecond float64 `koanf:"per_second"`
	Burst     int     `koanf:"burst"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   "gemini",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		RateLimit: RateLimitConfig{PerSecond: 2, Burst: 4},
		Timeout:   60 * time.Second,
	}
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini, OpenAI, Anthropic, OpenRouter) and returns a Config for the first
// provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// HasKey reports whether the selected provider has an API key (or needs none).
func (c Config) HasKey() bool {
	switch c.Provider {
	case "anthropic":
		return c.Anthropic.APIKey != ""
	case "openai":
		return c.OpenAI.APIKey != ""
	case "gemini":
		return c.Gemini.APIKey != ""
	case "openrouter":
		return c.OpenRouter.APIKey != ""
	case "mock":
		return true
	}
	return false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai", "gemini", "openrouter":
		if !c.HasKey() {
			return fmt.Errorf("PATHFINDER_LLM_%s_API_KEY is required for the %s provider",
				strings.ToUpper(c.Provider), c.Provider)
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.RateLimit.PerSecond < 0 {
		return fmt.Errorf("llm.rate_limit.per_second must not be negative")
	}
	return nil
}
