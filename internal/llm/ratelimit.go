package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitProvider throttles outgoing requests with a token bucket.
type RateLimitProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps p so that at most cfg.PerMinute requests start per
// minute, with bursts of cfg.Burst. A zero PerMinute returns p unchanged.
func WithRateLimit(p Provider, cfg RateLimitConfig) Provider {
	if cfg.PerMinute <= 0 {
		return p
	}
	burst := max(cfg.Burst, 1)
	every := time.Minute / time.Duration(cfg.PerMinute)
	return &RateLimitProvider{inner: p, limiter: rate.NewLimiter(rate.Every(every), burst)}
}

func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimitProvider) Stream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return StreamOrGenerate(ctx, r.inner, req)
}

func (r *RateLimitProvider) ModelID() string {
	return r.inner.ModelID()
}

func (r *RateLimitProvider) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// The wait would outlast the context deadline.
		return &Error{Kind: ErrRateLimited, Err: fmt.Errorf("local rate limit: %w", err)}
	}
	return nil
}
