package llm

import (
	"context"
	"fmt"
)

// NewProvider creates a Provider from configuration, wrapped as
// caller → retry → rate limit → timeout → logging → base, so every attempt
// waits for a token, gets its own deadline and is recorded.
func NewProvider(ctx context.Context, cfg Config, obs Observers) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := WithLogging(base, cfg.Provider, obs)
	p = WithTimeout(p, cfg.Timeout)
	p = WithRateLimit(p, cfg.RateLimit)
	p = WithRetry(p, cfg.Retry)
	return p, nil
}
