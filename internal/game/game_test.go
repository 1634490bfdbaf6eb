package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/chemquest/internal/content"
	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/grading"
	"github.com/abhisek/chemquest/internal/logging"
	"github.com/abhisek/chemquest/internal/progress"
	"github.com/abhisek/chemquest/internal/session"
	"github.com/abhisek/chemquest/internal/store"
)

func newTestGame(t *testing.T, src content.Source) (*Game, *store.Store) {
	t.Helper()
	st, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	reg, err := curriculum.Default()
	require.NoError(t, err)

	n := 0
	agg := progress.NewAggregator(reg)
	agg.Now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }
	agg.NewID = func() string { n++; return fmt.Sprintf("m%d", n) }

	logger := logging.Discard()
	g := New(Options{
		Registry:   reg,
		Content:    content.NewService(src, time.Second, logger),
		Profiles:   st.ProfileRepo(),
		Events:     st.EventRepo(),
		Planner:    session.NewSeededPlanner(7),
		Aggregator: agg,
		Saver:      progress.NewSaver(st.ProfileRepo(), progress.WithDebounce(time.Hour), progress.WithLogger(logger)),
		Logger:     logger,
	})
	t.Cleanup(func() { g.Close(context.Background()) })
	return g, st
}

func question(t *testing.T, g *Game, levelID, id string) curriculum.Question {
	t.Helper()
	l, ok := g.Registry().Level(levelID)
	require.True(t, ok)
	q, ok := l.Question(id)
	require.True(t, ok)
	return q
}

func TestPrepare_LockedAndUnknown(t *testing.T) {
	g, _ := newTestGame(t, nil)
	ctx := context.Background()

	_, err := g.Prepare(ctx, "mei", "reactions", 0)
	assert.ErrorIs(t, err, ErrLocked)

	_, err = g.Prepare(ctx, "mei", "nope", 0)
	assert.ErrorIs(t, err, progress.ErrUnknownLevel)

	prep, err := g.Prepare(ctx, "mei", "elements", 0)
	require.NoError(t, err)
	assert.False(t, prep.Offline)
	require.NotEmpty(t, prep.Level.Phases)
	for _, ph := range prep.Level.Phases {
		if !ph.IsCase() {
			assert.LessOrEqual(t, len(ph.Questions), session.QuestionsPerPhase)
		}
	}
}

func TestPrepare_OfflineFallback(t *testing.T) {
	failing := content.SourceFunc(func(context.Context, string) ([]curriculum.Phase, error) {
		return nil, errors.New("bank unreachable")
	})
	g, _ := newTestGame(t, failing)

	prep, err := g.Prepare(context.Background(), "mei", "elements", 0)
	require.NoError(t, err)
	assert.True(t, prep.Offline)
	assert.NotEmpty(t, prep.Level.Phases)
}

func TestPrepare_CancelledContext(t *testing.T) {
	g, _ := newTestGame(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Prepare(ctx, "mei", "elements", 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComplete_UpdatesProfileAndPersists(t *testing.T) {
	g, st := newTestGame(t, nil)
	ctx := context.Background()

	q := question(t, g, "elements", "el-symbol-na")
	res := session.Result{
		LevelID:    "elements",
		XP:         25,
		CorrectIDs: []string{"el-symbol-fe"},
		Mistakes:   []session.MistakePair{{Question: q, Answer: "S"}},
	}
	p, err := g.Complete(ctx, "mei", res, session.Summary{Total: 2, FirstTry: 1}, 90*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 25, p.Stats.TotalXP)

	lp, _ := p.Level("reactions")
	assert.True(t, lp.Unlocked, "next level unlocked on first completion")

	// Visible before the write lands.
	again, err := g.Profile(ctx, "mei")
	require.NoError(t, err)
	assert.Equal(t, 25, again.Stats.TotalXP)

	require.NoError(t, g.Flush(ctx))
	snap, err := st.ProfileRepo().Load(ctx, "mei")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 25, snap.Stats.TotalXP)
	assert.Len(t, snap.Mistakes, 1)

	events, err := st.EventRepo().QuerySessionEvents(ctx, store.QueryOpts{UserID: "mei"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionComplete, events[0].Action)
	assert.Equal(t, 90, events[0].DurationSecs)

	_, err = g.Prepare(ctx, "mei", "reactions", 0)
	assert.NoError(t, err)
}

func TestComplete_LockedLevel(t *testing.T) {
	g, _ := newTestGame(t, nil)
	ctx := context.Background()

	_, err := g.Complete(ctx, "mei", session.Result{LevelID: "ions", XP: 999}, session.Summary{}, 0)
	assert.ErrorIs(t, err, ErrLocked)

	p, err := g.Profile(ctx, "mei")
	require.NoError(t, err)
	lp, _ := p.Level("ions")
	assert.False(t, lp.Completed)
	assert.Zero(t, lp.Score)
	assert.Zero(t, p.Stats.TotalXP)
}

func TestComplete_PrivilegedIgnoresLock(t *testing.T) {
	g, _ := newTestGame(t, nil)
	g.privileged = true

	p, err := g.Complete(context.Background(), "mei", session.Result{LevelID: "ions", XP: 30}, session.Summary{}, 0)
	require.NoError(t, err)
	lp, _ := p.Level("ions")
	assert.True(t, lp.Completed)
}

func TestComplete_ConcurrentResultsAllCount(t *testing.T) {
	g, _ := newTestGame(t, nil)
	ctx := context.Background()

	q := question(t, g, "elements", "el-symbol-na")
	_, err := g.Complete(ctx, "mei", session.Result{
		LevelID:  "elements",
		Mistakes: []session.MistakePair{{Question: q, Answer: "S"}},
	}, session.Summary{}, 0)
	require.NoError(t, err)

	const runs = 100
	var wg sync.WaitGroup
	for i := range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := session.Result{LevelID: "elements", XP: 10, CorrectIDs: []string{fmt.Sprintf("el-%d", i)}}
			_, err := g.Complete(ctx, "mei", res, session.Summary{}, 0)
			assert.NoError(t, err)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := g.ResolveMistake(ctx, "mei", "m1")
		assert.NoError(t, err)
	}()
	wg.Wait()

	p, err := g.Profile(ctx, "mei")
	require.NoError(t, err)
	assert.Equal(t, runs*10, p.Stats.TotalXP)
	assert.Equal(t, runs+1, p.Stats.SessionsPlayed)
	assert.Empty(t, p.Mistakes, "resolved mistake came back")
	lp, _ := p.Level("elements")
	assert.Len(t, lp.AnsweredIDs, runs)
}

func TestComplete_UnknownLevel(t *testing.T) {
	g, _ := newTestGame(t, nil)
	_, err := g.Complete(context.Background(), "mei", session.Result{LevelID: "nope"}, session.Summary{}, 0)
	assert.ErrorIs(t, err, progress.ErrUnknownLevel)
}

func TestMistakeRetryAndResolve(t *testing.T) {
	g, _ := newTestGame(t, nil)
	ctx := context.Background()

	q := question(t, g, "elements", "el-symbol-na")
	_, err := g.Complete(ctx, "mei", session.Result{
		LevelID:  "elements",
		Mistakes: []session.MistakePair{{Question: q, Answer: "S"}},
	}, session.Summary{}, 0)
	require.NoError(t, err)

	book, err := g.Mistakes(ctx, "mei", "")
	require.NoError(t, err)
	require.Len(t, book, 1)
	id := book[0].ID

	out, err := g.RetryMistake(ctx, "mei", id, grading.Choose(0))
	require.NoError(t, err)
	assert.False(t, out.Correct)

	out, err = g.RetryMistake(ctx, "mei", id, grading.Choose(1))
	require.NoError(t, err)
	assert.True(t, out.Correct)

	p, err := g.ResolveMistake(ctx, "mei", id)
	require.NoError(t, err)
	assert.Empty(t, p.Mistakes)

	_, err = g.RetryMistake(ctx, "mei", id, grading.Choose(1))
	assert.ErrorIs(t, err, ErrUnknownMistake)
	_, err = g.ResolveMistake(ctx, "mei", id)
	assert.ErrorIs(t, err, ErrUnknownMistake)
}

func TestExplainWithoutTutor(t *testing.T) {
	g, _ := newTestGame(t, nil)
	assert.False(t, g.CanExplain())
	_, err := g.Explain(context.Background(), question(t, g, "elements", "el-symbol-na"), "S")
	assert.ErrorIs(t, err, ErrNoTutor)
}

func TestReset(t *testing.T) {
	g, st := newTestGame(t, nil)
	ctx := context.Background()

	_, err := g.Complete(ctx, "mei", session.Result{LevelID: "elements", XP: 10}, session.Summary{}, 0)
	require.NoError(t, err)
	require.NoError(t, g.Reset(ctx, "mei"))

	snap, err := st.ProfileRepo().Load(ctx, "mei")
	require.NoError(t, err)
	assert.Nil(t, snap)

	p, err := g.Profile(ctx, "mei")
	require.NoError(t, err)
	assert.Zero(t, p.Stats.TotalXP)
}

func TestHistory_PerUserNewestFirst(t *testing.T) {
	g, _ := newTestGame(t, nil)
	ctx := context.Background()

	_, err := g.Prepare(ctx, "mei", "elements", 0)
	require.NoError(t, err)
	g.Abandon(ctx, "mei", "elements", 30*time.Second)
	_, err = g.Prepare(ctx, "ravi", "elements", 0)
	require.NoError(t, err)

	evs, err := g.History(ctx, "mei", 10)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, ActionAbandon, evs[0].Action)
	assert.Equal(t, 30, evs[0].DurationSecs)
	assert.Equal(t, ActionStart, evs[1].Action)

	evs, err = g.History(ctx, "mei", 1)
	require.NoError(t, err)
	assert.Len(t, evs, 1)
}
