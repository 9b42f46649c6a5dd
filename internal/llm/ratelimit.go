package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedProvider waits for a token before every request so concurrent
// callers share one outbound budget.
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps p with a token bucket. A zero PerSecond returns p
// unchanged.
func WithRateLimit(p Provider, cfg RateLimitConfig) Provider {
	if cfg.PerSecond <= 0 {
		return p
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Limit(cfg.PerSecond), burst),
	}
}

func (r *RateLimitedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimitedProvider) ModelID() string {
	return r.inner.ModelID()
}

// TimeoutProvider bounds each request with its own deadline.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps p with a per-request deadline. A zero d returns p
// unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
