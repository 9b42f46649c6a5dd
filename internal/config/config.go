// Package config loads service configuration from a YAML file and
// PATHFINDER_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/hitensaxena/pathfinder/internal/curriculum"
	"github.com/hitensaxena/pathfinder/internal/llm"
	"github.com/hitensaxena/pathfinder/internal/logging"
	"github.com/hitensaxena/pathfinder/internal/quiz"
	"github.com/hitensaxena/pathfinder/internal/store"
)

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Auth       AuthConfig       `koanf:"auth"`
	Log        logging.Config   `koanf:"log"`
	Store      store.Config     `koanf:"store"`
	LLM        llm.Config       `koanf:"llm"`
	Generation GenerationConfig `koanf:"generation"`
	Video      VideoConfig      `koanf:"video"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `koanf:"addr"`

	// Mode is the gin mode: "debug", "release" or "test".
	Mode            string        `koanf:"mode"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// AuthConfig configures bearer-token verification.
type AuthConfig struct {
	// JWTSecret is the HS256 key for verifying API tokens.
	JWTSecret string `koanf:"jwt_secret"`
	Issuer    string `koanf:"issuer"`
}

// GenerationConfig tunes curriculum and quiz generation.
type GenerationConfig struct {
	curriculum.Config `koanf:",squash"`

	QuizMaxTokens   int     `koanf:"quiz_max_tokens"`
	QuizTemperature float64 `koanf:"quiz_temperature"`
}

// Curriculum returns the curriculum generation settings.
func (g GenerationConfig) Curriculum() curriculum.Config {
	return g.Config
}

// Quiz returns the quiz generation settings with the standard validators.
func (g GenerationConfig) Quiz() quiz.Config {
	cfg := quiz.DefaultConfig()
	cfg.MaxTokens = g.QuizMaxTokens
	cfg.Temperature = g.QuizTemperature
	return cfg
}

// VideoConfig configures video search. An empty key disables it.
type VideoConfig struct {
	YouTubeAPIKey string `koanf:"youtube_api_key"`
}

// Default returns the built-in configuration.
func Default() Config {
	q := quiz.DefaultConfig()
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ShutdownTimeout: 15 * time.Second,
		},
		Auth: AuthConfig{Issuer: "pathfinder"},
		Log:  logging.Config{Mode: "development", Level: "info"},
		Store: store.Config{
			Driver: "sqlite",
		},
		LLM: llm.DefaultConfig(),
		Generation: GenerationConfig{
			Config:          curriculum.DefaultConfig(),
			QuizMaxTokens:   q.MaxTokens,
			QuizTemperature: q.Temperature,
		},
	}
}

// Validate checks settings every command depends on. Provider keys and the
// JWT secret are checked by the components that need them.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
	case "firestore":
		if c.Store.FirestoreProject == "" {
			return fmt.Errorf("store.firestore_project is required for the firestore driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q (want sqlite or firestore)", c.Store.Driver)
	}

	if c.Generation.MaxConcurrency < 1 {
		return fmt.Errorf("generation.max_concurrency must be at least 1, got %d", c.Generation.MaxConcurrency)
	}
	if c.Generation.CallTimeout < 0 {
		return fmt.Errorf("generation.call_timeout must not be negative")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	return nil
}
