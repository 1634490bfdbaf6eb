package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/chemquest/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	logger    *slog.Logger
}

// WithLogging wraps a Provider with event logging. provider is the
// configured provider name ("anthropic", "openai", ...).
func WithLogging(p Provider, provider string, repo store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{inner: p, provider: provider, eventRepo: repo, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	data := l.event(ctx, req, time.Since(start), err)
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}
	l.record(ctx, data)

	return resp, err
}

// Stream forwards the inner stream and records one event when it ends.
func (l *LoggingProvider) Stream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	start := time.Now()
	in, err := StreamOrGenerate(ctx, l.inner, req)
	if err != nil {
		l.record(ctx, l.event(ctx, req, time.Since(start), err))
		return nil, err
	}

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		var (
			text   strings.Builder
			usage  Usage
			model  string
			runErr error
		)
		for c := range in {
			text.WriteString(c.Text)
			if c.Model != "" {
				model = c.Model
			}
			if c.Done {
				usage = c.Usage
			}
			if c.Err != nil {
				runErr = c.Err
			}
			if !send(ctx, out, c) {
				runErr = ctx.Err()
				break
			}
		}

		data := l.event(ctx, req, time.Since(start), runErr)
		data.InputTokens = usage.InputTokens
		data.OutputTokens = usage.OutputTokens
		if model != "" {
			data.Model = model
		}
		data.ResponseBody = text.String()
		l.record(context.WithoutCancel(ctx), data)
	}()
	return out, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) event(ctx context.Context, req Request, latency time.Duration, err error) store.LLMRequestEventData {
	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     string(PurposeFrom(ctx)),
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}
	return data
}

// record stores the event; a failure is logged and never fails the request.
func (l *LoggingProvider) record(ctx context.Context, data store.LLMRequestEventData) {
	if err := l.eventRepo.AppendLLMRequest(ctx, data); err != nil {
		l.logger.Warn("failed to log LLM request event", "purpose", data.Purpose, "error", err)
	}
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(schemaDef)
			b.WriteString("\n")
		}
	}

	return b.String()
}
