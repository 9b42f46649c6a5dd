package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/hitensaxena/pathfinder/internal/llm"
)

const (
	envPrefix         = "PATHFINDER_"
	maxConfigFileSize = 1024 * 1024
)

// standardKeyEnv maps providers to the vendor's usual API key variable.
var standardKeyEnv = map[string]string{
	"gemini":     "GEMINI_API_KEY",
	"openai":     "OPENAI_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
}

// Load reads configuration with this precedence (highest first):
//  1. PATHFINDER_* environment variables (PATHFINDER_LLM_ANTHROPIC_API_KEY -> llm.anthropic.api_key)
//  2. the YAML file at path
//  3. built-in defaults
//
// An empty path uses DefaultPath. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	var content []byte
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}
		if content, err = io.ReadAll(f); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open config file: %w", err)
	}

	cfg, err := LoadBytes(content)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// LoadBytes is Load with the YAML document given directly.
func LoadBytes(content []byte) (*Config, error) {
	k := koanf.New(".")

	if len(content) > 0 {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	keys := envKeys(reflect.TypeOf(Config{}), "")
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return keys[strings.ToLower(strings.TrimPrefix(s, envPrefix))]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	discoverLLMKey(&cfg, k.Exists("llm.provider"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// discoverLLMKey fills a missing provider key from the vendor's standard
// environment variable. When no provider was chosen explicitly, the first
// vendor with a key wins.
func discoverLLMKey(cfg *Config, explicitProvider bool) {
	if cfg.LLM.HasKey() {
		return
	}

	if !explicitProvider {
		found, ok := llm.DiscoverConfig()
		if !ok {
			return
		}
		cfg.LLM.Provider = found.Provider
	}

	key := os.Getenv(standardKeyEnv[cfg.LLM.Provider])
	if key == "" {
		return
	}
	switch cfg.LLM.Provider {
	case "gemini":
		cfg.LLM.Gemini.APIKey = key
	case "openai":
		cfg.LLM.OpenAI.APIKey = key
	case "anthropic":
		cfg.LLM.Anthropic.APIKey = key
	case "openrouter":
		cfg.LLM.OpenRouter.APIKey = key
	}
}

// envKeys maps every config key with dots flattened to underscores
// ("llm_anthropic_api_key") to its dotted form ("llm.anthropic.api_key").
// Field names contain underscores themselves, so the mapping cannot be
// derived from the variable name alone.
func envKeys(t reflect.Type, prefix string) map[string]string {
	out := map[string]string{}
	durationType := reflect.TypeOf(time.Duration(0))

	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("koanf")
		name, opts, _ := strings.Cut(tag, ",")
		if name == "-" {
			continue
		}

		if opts == "squash" && f.Type.Kind() == reflect.Struct {
			for k, v := range envKeys(f.Type, prefix) {
				out[k] = v
			}
			continue
		}
		if name == "" || !f.IsExported() {
			continue
		}

		key := prefix + name
		if f.Type.Kind() == reflect.Struct && f.Type != durationType {
			for k, v := range envKeys(f.Type, key+".") {
				out[k] = v
			}
			continue
		}
		out[strings.ReplaceAll(key, ".", "_")] = key
	}
	return out
}

// DefaultPath resolves the config file path in priority order:
// 1. PATHFINDER_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/pathfinder/config.yaml
// 3. ~/.config/pathfinder/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv("PATHFINDER_CONFIG"); p != "" {
		return p, nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "pathfinder", "config.yaml"), nil
}
