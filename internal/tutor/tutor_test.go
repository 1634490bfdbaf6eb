package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/llm"
)

func saltQuestion() curriculum.Question {
	return curriculum.Question{
		ID:          "salt",
		Prompt:      "What forms when sodium burns in chlorine?",
		Explanation: "Na gives one electron to Cl.",
		Payload:     curriculum.FreeText{Answer: "NaCl/氯化钠"},
	}
}

func TestExplain(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"explanation":"  NaClO is sodium hypochlorite, which needs oxygen.  "}`),
	})

	text, err := NewExplainer(mock).Explain(context.Background(), saltQuestion(), "NaClO")
	require.NoError(t, err)
	assert.Equal(t, "NaClO is sodium hypochlorite, which needs oxygen.", text)

	require.Len(t, mock.Calls, 1)
	req := mock.Calls[0]
	assert.Equal(t, "wrong-answer-explanation", req.Schema.Name)
	prompt := req.Messages[0].Content
	assert.Contains(t, prompt, "Student's answer: NaClO")
	assert.Contains(t, prompt, "Correct answer: NaCl")
	assert.Contains(t, prompt, "Reference explanation: Na gives one electron to Cl.")
}

func TestExplain_MultipleChoiceListsOptions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"explanation":"Noble gases are inert."}`)})
	q := curriculum.Question{
		ID:      "inert",
		Prompt:  "Which is a noble gas?",
		Payload: curriculum.MultipleChoice{Options: []string{"N2", "Ar"}, Correct: 1},
	}
	_, err := NewExplainer(mock).Explain(context.Background(), q, "N2")
	require.NoError(t, err)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Options: N2 | Ar")
}

func TestExplain_Errors(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"provider error", llm.MockResponse{Err: errors.New("timeout")}},
		{"not json", llm.MockResponse{Content: json.RawMessage(`plain`)}},
		{"empty", llm.MockResponse{Content: json.RawMessage(`{"explanation":"  "}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExplainer(llm.NewMockProvider(tt.resp)).Explain(context.Background(), saltQuestion(), "x")
			assert.Error(t, err)
		})
	}
}

// purposeProvider records the purpose attached to each request. It does
// not stream, so Chat falls back to Generate.
type purposeProvider struct {
	mock     *llm.MockProvider
	purposes []llm.Purpose
}

func (p *purposeProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.purposes = append(p.purposes, llm.PurposeFrom(ctx))
	return p.mock.Generate(ctx, req)
}

func (p *purposeProvider) ModelID() string { return p.mock.ModelID() }

func TestChat_Stream(t *testing.T) {
	p := &purposeProvider{mock: llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("Acids donate protons.")})}

	ch, err := NewChat(p).Stream(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "What is an acid?"},
	})
	require.NoError(t, err)
	text, _, err := llm.Collect(ch)
	require.NoError(t, err)
	assert.Equal(t, "Acids donate protons.", text)
	assert.Equal(t, []llm.Purpose{llm.PurposeTutorChat}, p.purposes)
}

func TestChat_RequiresUserTurn(t *testing.T) {
	chat := NewChat(llm.NewMockProvider())
	_, err := chat.Stream(context.Background(), nil)
	assert.Error(t, err)
	_, err = chat.Stream(context.Background(), []llm.Message{{Role: llm.RoleAssistant, Content: "hi"}})
	assert.Error(t, err)
}
