package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testExplanationSchema mirrors the shape the tutor asks for when a student
// answers wrong, with a tagged misconception.
var testExplanationSchema = &Schema{
	Name:        "wrong-answer-explanation",
	Description: "Why a chemistry answer is wrong",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{"type": "string", "minLength": 1},
			"misconception": map[string]any{
				"type": "string",
				"enum": []string{"charge", "formula", "state", "other"},
			},
		},
		"required":             []string{"explanation"},
		"additionalProperties": false,
	},
}

func TestSchema_Validate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"explanation only", `{"explanation":"Sodium forms Na+, not Na2+."}`, false},
		{"with misconception", `{"explanation":"Chloride is Cl-.","misconception":"charge"}`, false},
		{"missing explanation", `{"misconception":"formula"}`, true},
		{"empty explanation", `{"explanation":""}`, true},
		{"unknown misconception", `{"explanation":"x","misconception":"valence"}`, true},
		{"extra field", `{"explanation":"x","grade":"A"}`, true},
		{"not an object", `"NaCl"`, true},
		{"not json", `NaCl is table salt`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testExplanationSchema.Validate(json.RawMessage(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, ErrInvalidOutput, e.Kind)
			assert.Equal(t, tt.raw, string(e.Content))
		})
	}
}

func TestSchema_ValidateCachesCompiled(t *testing.T) {
	s := &Schema{Name: "balanced-equation", Definition: map[string]any{
		"type":     "object",
		"required": []string{"coefficients"},
		"properties": map[string]any{
			"coefficients": map[string]any{"type": "array", "items": map[string]any{"type": "integer", "minimum": 1}},
		},
	}}
	require.NoError(t, s.Validate(json.RawMessage(`{"coefficients":[2,1,2]}`)))
	_, ok := compiled.Load(s)
	assert.True(t, ok)
	assert.Error(t, s.Validate(json.RawMessage(`{"coefficients":[2,0,2]}`)))
}

func TestSchema_BrokenDefinitionIsNotModelError(t *testing.T) {
	s := &Schema{Name: "broken", Definition: map[string]any{"type": 7}}
	err := s.Validate(json.RawMessage(`{}`))
	require.Error(t, err)
	var e *Error
	assert.False(t, errors.As(err, &e), "a bad schema is a programming error, not model output")
}

func TestCheckOutput(t *testing.T) {
	good := json.RawMessage(`{"explanation":"Water is H2O."}`)
	cut := json.RawMessage(`{"explanation":"Water is`)

	assert.NoError(t, checkOutput(Request{}, &Response{Content: cut, StopReason: StopMaxTokens}),
		"free text may be truncated")
	assert.NoError(t, checkOutput(Request{Schema: testExplanationSchema}, &Response{Content: good, StopReason: StopEnd}))

	err := checkOutput(Request{Schema: testExplanationSchema}, &Response{Content: cut, StopReason: StopMaxTokens})
	assert.Equal(t, ErrTruncated, KindOf(err))

	err = checkOutput(Request{Schema: testExplanationSchema}, &Response{Content: cut, StopReason: StopEnd})
	assert.Equal(t, ErrInvalidOutput, KindOf(err))
}
