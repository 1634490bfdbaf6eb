package llm

import (
	"context"
	"strings"
)

// StreamOrGenerate streams from p when it can, and otherwise runs Generate
// and delivers the whole text as a single chunk.
func StreamOrGenerate(ctx context.Context, p Provider, req Request) (<-chan StreamChunk, error) {
	if s, ok := p.(Streamer); ok {
		return s.Stream(ctx, req)
	}
	resp, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	ch := make(chan StreamChunk, 2)
	ch <- StreamChunk{Text: string(resp.Content), Model: resp.Model}
	ch <- StreamChunk{Done: true, Usage: resp.Usage, Model: resp.Model}
	close(ch)
	return ch, nil
}

// Collect drains a stream into a single string. It returns the text read
// so far together with the first chunk error.
func Collect(ch <-chan StreamChunk) (string, Usage, error) {
	var (
		b     strings.Builder
		usage Usage
	)
	for c := range ch {
		if c.Err != nil {
			return b.String(), usage, c.Err
		}
		b.WriteString(c.Text)
		if c.Done {
			usage = c.Usage
		}
	}
	return b.String(), usage, nil
}

// send delivers c unless ctx is done first.
func send(ctx context.Context, ch chan<- StreamChunk, c StreamChunk) bool {
	select {
	case ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
