package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/chemquest/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with rate
// limiting, retry and logging middleware:
// caller → rate limit → retry → logging → base.
// eventRepo may be nil, in which case requests are not recorded.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
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
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := base
	if eventRepo != nil {
		p = WithLogging(p, cfg.Provider, eventRepo, logger)
	}
	p = WithRetry(p, cfg.Retry)
	p = WithRateLimit(p, cfg.RateLimit)
	return p, nil
}
