package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures with exponential backoff and
// jitter. Invalid structured output gets a single retry; truncated output
// and context errors are returned immediately.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var resp *Response
	err := r.do(ctx, func() error {
		var err error
		resp, err = r.inner.Generate(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Stream retries opening the stream. Errors after the first chunk are
// delivered on the channel and not retried.
func (r *RetryProvider) Stream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	var ch <-chan StreamChunk
	err := r.do(ctx, func() error {
		var err error
		ch, err = StreamOrGenerate(ctx, r.inner, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func (r *RetryProvider) do(ctx context.Context, call func() error) error {
	attempts := max(r.config.MaxAttempts, 1)
	invalidSeen := false
	var err error
	for attempt := range attempts {
		if err = call(); err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		switch KindOf(err) {
		case ErrTruncated:
			return err
		case ErrInvalidOutput:
			if invalidSeen {
				return err
			}
			invalidSeen = true
		}
		// Last attempt: return without sleeping.
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff(attempt, err)):
		}
	}
	return err
}

// backoff honours a provider's RetryAfter, otherwise grows the wait
// geometrically up to MaxWait with ±20% jitter.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.Kind == ErrRateLimited && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	wait := math.Min(
		float64(r.config.InitialWait)*math.Pow(r.config.Multiplier, float64(attempt)),
		float64(r.config.MaxWait),
	)
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(wait, 0))
}
