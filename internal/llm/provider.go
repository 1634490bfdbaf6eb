package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one request to a model. The tutor uses it for
// wrong-answer explanations (with a Schema) and, when the backend cannot
// stream, for chat turns.
type Provider interface {
	// Generate returns the model's reply. With req.Schema set, Content is
	// JSON that has passed the schema; otherwise it is the raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, after friendly-name resolution.
	ModelID() string
}

// Streamer is implemented by providers that deliver text as it is
// generated. The channel closes after the final chunk, and a chunk with
// Err set is always last.
type Streamer interface {
	Stream(ctx context.Context, req Request) (<-chan StreamChunk, error)
}

// StreamChunk is one delta of a streamed reply. The final chunk has Done
// set and carries the usage totals.
type StreamChunk struct {
	Text  string
	Done  bool
	Usage Usage
	Model string
	Err   error
}

// Request is a single model call.
type Request struct {
	System string

	// Messages is one user turn for an explanation, or the running tutor
	// conversation ending in a user turn.
	Messages []Message

	// Schema requests native structured output. Streaming ignores it.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 leaves the provider default
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema for structured replies. Name is kebab-case and
// doubles as the OpenAI schema name, e.g. "wrong-answer-explanation".
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that served the call, which may be a dated
	// snapshot of ModelID.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
