// Package tutor asks the LLM to explain wrong answers and to hold a
// streaming chemistry tutoring conversation. Both are best-effort: callers
// log failures and carry on with the authored explanation.
package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/grading"
	"github.com/abhisek/chemquest/internal/llm"
)

const explainSystem = `You are a patient chemistry tutor for secondary-school students.
A student answered a question incorrectly. In at most three sentences, explain
why their answer is wrong and why the correct answer is right. Use plain text
chemical formulas such as H2O and Na+. Do not repeat the question.`

const chatSystem = `You are a friendly chemistry tutor. Answer the student's questions
about elements, reactions, ions and lab tests clearly and briefly. Use plain
text chemical formulas such as H2SO4. If a question is not about chemistry,
gently steer back to chemistry.`

var explanationSchema = &llm.Schema{
	Name:        "wrong-answer-explanation",
	Description: "A short explanation of a student's wrong answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "Two or three sentences addressed to the student",
			},
		},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	},
}

// Explainer produces short explanations for wrong answers.
type Explainer struct {
	provider  llm.Provider
	maxTokens int
}

// NewExplainer returns an Explainer backed by provider.
func NewExplainer(provider llm.Provider) *Explainer {
	return &Explainer{provider: provider, maxTokens: 300}
}

// Explain asks why wrong is not the answer to q.
func (e *Explainer) Explain(ctx context.Context, q curriculum.Question, wrong string) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeExplanation)

	resp, err := e.provider.Generate(ctx, llm.Request{
		System:    explainSystem,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: explainPrompt(q, wrong)}},
		Schema:    explanationSchema,
		MaxTokens: e.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("explain %s: %w", q.ID, err)
	}

	var out struct {
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("explain %s: decode: %w", q.ID, err)
	}
	text := strings.TrimSpace(out.Explanation)
	if text == "" {
		return "", fmt.Errorf("explain %s: empty explanation", q.ID)
	}
	return text, nil
}

func explainPrompt(q curriculum.Question, wrong string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", q.Prompt)
	if mc, ok := q.Payload.(curriculum.MultipleChoice); ok {
		fmt.Fprintf(&b, "Options: %s\n", strings.Join(mc.Options, " | "))
	}
	if d, ok := q.Payload.(curriculum.Deduction); ok {
		for _, c := range d.Clues {
			fmt.Fprintf(&b, "Clue: %s -> %s\n", c.Stimulus, c.Result)
		}
	}
	fmt.Fprintf(&b, "Student's answer: %s\n", wrong)
	fmt.Fprintf(&b, "Correct answer: %s\n", grading.CanonicalText(q))
	if q.Explanation != "" {
		fmt.Fprintf(&b, "Reference explanation: %s\n", q.Explanation)
	}
	return b.String()
}

// Chat is a running tutor conversation.
type Chat struct {
	provider  llm.Provider
	maxTokens int
}

// NewChat returns a Chat backed by provider.
func NewChat(provider llm.Provider) *Chat {
	return &Chat{provider: provider, maxTokens: 800}
}

// Stream answers the last user message in history. Providers that cannot
// stream deliver the whole answer as one chunk.
func (c *Chat) Stream(ctx context.Context, history []llm.Message) (<-chan llm.StreamChunk, error) {
	if len(history) == 0 || history[len(history)-1].Role != llm.RoleUser {
		return nil, fmt.Errorf("tutor chat: history must end with a user message")
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeTutorChat)
	return llm.StreamOrGenerate(ctx, c.provider, llm.Request{
		System:      chatSystem,
		Messages:    history,
		MaxTokens:   c.maxTokens,
		Temperature: 0.3,
	})
}
