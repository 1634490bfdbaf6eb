package content

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/chemquest/internal/curriculum"
)

func freeText(id, answer string) curriculum.Question {
	return curriculum.Question{ID: id, Prompt: id + "?", Payload: curriculum.FreeText{Answer: answer}}
}

func stubLevel() curriculum.Level {
	return curriculum.Level{
		ID:      "ions",
		Title:   "Ions",
		Concept: &curriculum.Concept{Title: "Ions", Body: "Charged particles."},
		Phases: []curriculum.Phase{
			{ID: "local", Questions: []curriculum.Question{freeText("l1", "Na+")}},
		},
	}
}

func remotePhases() []curriculum.Phase {
	return []curriculum.Phase{
		{ID: "tests", Title: "Flame tests", Questions: []curriculum.Question{freeText("r1", "K+"), freeText("r2", "Cu2+")}},
	}
}

func TestHydrate_NoSource(t *testing.T) {
	svc := NewService(nil, 0, nil)
	got := svc.Hydrate(context.Background(), stubLevel())
	assert.False(t, got.Offline)
	assert.NoError(t, got.Err)
	assert.Equal(t, stubLevel(), got.Level)
	assert.False(t, svc.Remote())
}

func TestHydrate_UsesRemoteBank(t *testing.T) {
	src := SourceFunc(func(_ context.Context, levelID string) ([]curriculum.Phase, error) {
		assert.Equal(t, "ions", levelID)
		return remotePhases(), nil
	})
	got := NewService(src, 0, nil).Hydrate(context.Background(), stubLevel())

	require.False(t, got.Offline)
	assert.Equal(t, []string{"r1", "r2"}, got.Level.QuestionIDs())
	assert.Equal(t, "Ions", got.Level.Title)
	require.NotNil(t, got.Level.Concept, "concept comes from the local stub")
}

func TestHydrate_FallsBack(t *testing.T) {
	tests := []struct {
		name    string
		phases  []curriculum.Phase
		err     error
		wantErr error
	}{
		{name: "fetch error", err: errors.New("connection refused")},
		{name: "empty bank", phases: nil, wantErr: ErrEmptyBank},
		{name: "only malformed", phases: []curriculum.Phase{
			{ID: "p", Questions: []curriculum.Question{freeText("bad", "")}},
		}, wantErr: ErrEmptyBank},
		{name: "duplicate ids", phases: []curriculum.Phase{
			{ID: "a", Questions: []curriculum.Question{freeText("x", "1")}},
			{ID: "b", Questions: []curriculum.Question{freeText("x", "2")}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := SourceFunc(func(context.Context, string) ([]curriculum.Phase, error) {
				return tt.phases, tt.err
			})
			got := NewService(src, 0, nil).Hydrate(context.Background(), stubLevel())
			assert.True(t, got.Offline)
			require.Error(t, got.Err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, got.Err, tt.wantErr)
			}
			assert.Equal(t, stubLevel(), got.Level)
		})
	}
}

func TestHydrate_DropsMalformedQuestions(t *testing.T) {
	src := SourceFunc(func(context.Context, string) ([]curriculum.Phase, error) {
		return []curriculum.Phase{
			{ID: "p1", Questions: []curriculum.Question{freeText("ok", "K+"), freeText("bad", "")}},
			{ID: "p2", Questions: []curriculum.Question{{ID: "nopayload", Prompt: "?"}}},
		}, nil
	})
	got := NewService(src, 0, nil).Hydrate(context.Background(), stubLevel())
	require.False(t, got.Offline)
	require.Len(t, got.Level.Phases, 1)
	assert.Equal(t, []string{"ok"}, got.Level.QuestionIDs())
}

func TestHydrate_Timeout(t *testing.T) {
	src := SourceFunc(func(ctx context.Context, _ string) ([]curriculum.Phase, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	start := time.Now()
	got := NewService(src, 20*time.Millisecond, nil).Hydrate(context.Background(), stubLevel())
	assert.True(t, got.Offline)
	assert.ErrorIs(t, got.Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestHydrate_Cancelled(t *testing.T) {
	src := SourceFunc(func(ctx context.Context, _ string) ([]curriculum.Phase, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := NewService(src, time.Minute, nil).Hydrate(ctx, stubLevel())
	assert.True(t, got.Offline)
	assert.ErrorIs(t, got.Err, context.Canceled)
}

func TestGroupPhases(t *testing.T) {
	doc := func(phase string, phaseOrder, order int, id string) BankDoc {
		return BankDoc{
			LevelID: "ions", PhaseID: phase, PhaseTitle: "Phase " + phase, PhaseOrder: phaseOrder, Order: order,
			QuestionDoc: curriculum.QuestionDoc{ID: id, Kind: curriculum.KindFreeText, Prompt: id, Answer: "x"},
		}
	}
	docs := []BankDoc{
		doc("b", 2, 1, "b1"),
		doc("a", 1, 2, "a2"),
		doc("a", 1, 1, "a1"),
		{PhaseID: "a", PhaseOrder: 1, Order: 3, QuestionDoc: curriculum.QuestionDoc{ID: "weird", Kind: "riddle"}},
	}

	phases, errs := GroupPhases(docs)
	require.Len(t, errs, 1)
	require.Len(t, phases, 2)
	assert.Equal(t, "a", phases[0].ID)
	assert.Equal(t, "Phase a", phases[0].Title)
	assert.Equal(t, "a1", phases[0].Questions[0].ID)
	assert.Equal(t, "a2", phases[0].Questions[1].ID)
	assert.Equal(t, "b1", phases[1].Questions[0].ID)
}

// memCache is an in-memory Cache.
type memCache struct {
	mu      sync.Mutex
	data    map[string]string
	ttl     time.Duration
	failGet error
	failSet error
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return "", c.failGet
	}
	v, ok := c.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet != nil {
		return c.failSet
	}
	if c.data == nil {
		c.data = map[string]string{}
	}
	c.data[key] = value
	c.ttl = ttl
	return nil
}

type countingSource struct {
	calls  int
	phases []curriculum.Phase
	err    error
}

func (s *countingSource) FetchPhases(context.Context, string) ([]curriculum.Phase, error) {
	s.calls++
	return s.phases, s.err
}

func TestCachedSource(t *testing.T) {
	inner := &countingSource{phases: remotePhases()}
	cache := &memCache{}
	src := &CachedSource{Inner: inner, Cache: cache}
	ctx := context.Background()

	first, err := src.FetchPhases(ctx, "ions")
	require.NoError(t, err)
	second, err := src.FetchPhases(ctx, "ions")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls, "second fetch is served from cache")
	assert.Equal(t, first, second)
	assert.Equal(t, DefaultCacheTTL, cache.ttl)
	assert.Contains(t, cache.data, "chemquest.bank.ions")
}

func TestCachedSource_CacheFailuresFallThrough(t *testing.T) {
	inner := &countingSource{phases: remotePhases()}
	cache := &memCache{failGet: errors.New("redis down"), failSet: errors.New("redis down")}
	src := &CachedSource{Inner: inner, Cache: cache, TTL: time.Minute}

	got, err := src.FetchPhases(context.Background(), "ions")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedSource_CorruptEntry(t *testing.T) {
	inner := &countingSource{phases: remotePhases()}
	cache := &memCache{data: map[string]string{"chemquest.bank.ions": "{not json"}}
	src := &CachedSource{Inner: inner, Cache: cache}

	got, err := src.FetchPhases(context.Background(), "ions")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NotEqual(t, "{not json", cache.data["chemquest.bank.ions"], "entry is rewritten")
}

func TestCachedSource_InnerError(t *testing.T) {
	inner := &countingSource{err: errors.New("boom")}
	src := &CachedSource{Inner: inner, Cache: &memCache{}}
	_, err := src.FetchPhases(context.Background(), "ions")
	assert.Error(t, err)
}
