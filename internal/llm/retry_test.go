package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// checkedMock applies the provider output contract to canned responses, the
// way the real providers do after decoding an API reply.
type checkedMock struct{ *MockProvider }

func (m checkedMock) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := m.MockProvider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := checkOutput(req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func unavailable() MockResponse {
	return MockResponse{Err: &Error{Kind: ErrUnavailable, Err: errors.New("503")}}
}

func explanation(text string) MockResponse {
	b, _ := json.Marshal(map[string]string{"explanation": text})
	return MockResponse{Content: b}
}

func TestRetry_Policy(t *testing.T) {
	tests := []struct {
		name      string
		responses []MockResponse
		wantCalls int
		wantKind  ErrorKind
		wantErr   bool
	}{
		{
			name:      "first attempt",
			responses: []MockResponse{explanation("Mg loses two electrons.")},
			wantCalls: 1,
		},
		{
			name:      "transient then success",
			responses: []MockResponse{unavailable(), explanation("Mg loses two electrons.")},
			wantCalls: 2,
		},
		{
			name:      "attempts exhausted",
			responses: []MockResponse{unavailable(), unavailable(), unavailable(), explanation("unreached")},
			wantCalls: 3,
			wantErr:   true,
			wantKind:  ErrUnavailable,
		},
		{
			name:      "truncated is final",
			responses: []MockResponse{{Err: &Error{Kind: ErrTruncated}}, explanation("unreached")},
			wantCalls: 1,
			wantErr:   true,
			wantKind:  ErrTruncated,
		},
		{
			name: "invalid output retried once",
			responses: []MockResponse{
				{Content: json.RawMessage(`{"answer":"MgO"}`)},
				{Content: json.RawMessage(`MgO`)},
				explanation("unreached"),
			},
			wantCalls: 2,
			wantErr:   true,
			wantKind:  ErrInvalidOutput,
		},
		{
			name: "invalid output then valid",
			responses: []MockResponse{
				{Content: json.RawMessage(`{"explanation":""}`)},
				explanation("Oxide is O2-, so magnesium oxide is MgO."),
			},
			wantCalls: 2,
		},
		{
			name:      "rate limit honours retry-after",
			responses: []MockResponse{{Err: &Error{Kind: ErrRateLimited, RetryAfter: time.Millisecond}}, explanation("ok")},
			wantCalls: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			p := WithRetry(checkedMock{mock}, retryConfig())

			resp, err := p.Generate(WithPurpose(context.Background(), PurposeExplanation), Request{Schema: testExplanationSchema})
			assert.Equal(t, tt.wantCalls, mock.CallCount())
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.NoError(t, testExplanationSchema.Validate(resp.Content))
		})
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), explanation("unreached"))
	p := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, mock.CallCount(), "cancelled during the first backoff")

	mock = NewMockProvider(MockResponse{Err: context.Canceled}, explanation("unreached"))
	_, err = WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_ZeroAttemptsStillCalls(t *testing.T) {
	mock := NewMockProvider(explanation("Fe3+ is iron(III)."))
	resp, err := WithRetry(mock, RetryConfig{}).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, "mock", WithRetry(mock, RetryConfig{}).ModelID())
}

func TestRetry_BackoffBounds(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: time.Second, Multiplier: 2}}
	for attempt, base := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond, time.Second} {
		got := r.backoff(attempt, errors.New("x"))
		assert.InDelta(t, float64(base), float64(got), float64(base)*0.2+1, "attempt %d", attempt)
	}
	assert.Equal(t, 3*time.Second, r.backoff(0, &Error{Kind: ErrRateLimited, RetryAfter: 3 * time.Second}))
}

// The factory chain tags every attempt with the caller's purpose, so a
// retried explanation shows up as two explanation events.
func TestProviderChain_RecordsEveryAttemptUnderPurpose(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(unavailable(), explanation("Chlorine gains one electron to form Cl-."))

	var p Provider = checkedMock{mock}
	p = WithLogging(p, "mock", repo, nil)
	p = WithRetry(p, retryConfig())
	p = WithRateLimit(p, RateLimitConfig{PerMinute: 600, Burst: 5})

	ctx := WithPurpose(context.Background(), PurposeExplanation)
	_, err := p.Generate(ctx, Request{Schema: testExplanationSchema, Messages: []Message{{Role: RoleUser, Content: "Why is chloride not Cl2-?"}}})
	require.NoError(t, err)

	events := repo.recorded()
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, string(PurposeExplanation), ev.Purpose)
		assert.Contains(t, ev.RequestBody, "[schema: wrong-answer-explanation]")
	}
	assert.False(t, events[0].Success)
	assert.True(t, events[1].Success)
}
