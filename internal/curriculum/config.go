package curriculum

import "time"

// Config holds curriculum generation settings.
type Config struct {
	// MaxConcurrency caps in-flight module detail calls.
	MaxConcurrency int `koanf:"max_concurrency"`

	// CallTimeout bounds each module detail call. Zero disables it.
	CallTimeout time.Duration `koanf:"call_timeout"`

	OutlineMaxTokens   int     `koanf:"outline_max_tokens"`
	OutlineTemperature float64 `koanf:"outline_temperature"`
	DetailMaxTokens    int     `koanf:"detail_max_tokens"`
	DetailTemperature  float64 `koanf:"detail_temperature"`
}

// DefaultConfig returns sensible defaults for curriculum generation.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency:     4,
		CallTimeout:        90 * time.Second,
		OutlineMaxTokens:   2048,
		OutlineTemperature: 0.7,
		DetailMaxTokens:    4096,
		DetailTemperature:  0.6,
	}
}

func (c Config) concurrency() int {
	if c.MaxConcurrency <= 0 {
		return 1
	}
	return c.MaxConcurrency
}
