package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/session"
)

func fixedAggregator(t *testing.T, now time.Time) *Aggregator {
	t.Helper()
	reg, err := curriculum.Default()
	require.NoError(t, err)
	n := 0
	return &Aggregator{
		Curriculum: reg,
		Now:        func() time.Time { return now },
		NewID: func() string {
			n++
			return "m" + string(rune('0'+n))
		},
	}
}

func mcq(id string) curriculum.Question {
	return curriculum.Question{
		ID:      id,
		Prompt:  "pick",
		Payload: curriculum.MultipleChoice{Options: []string{"X", "Y"}, Correct: 1},
	}
}

var wednesday = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

func TestApply_FirstCompletion(t *testing.T) {
	agg := fixedAggregator(t, wednesday)
	p := Sync(New("u1"), agg.Curriculum)

	got, err := agg.Apply(p, "elements", session.Result{
		LevelID:    "elements",
		XP:         40,
		Mistakes:   []session.MistakePair{{Question: mcq("q9"), Answer: "X"}},
		CorrectIDs: []string{"q2", "q1"},
	})
	require.NoError(t, err)

	lp, ok := got.Level("elements")
	require.True(t, ok)
	assert.True(t, lp.Completed)
	assert.Equal(t, 40, lp.Score)
	assert.Equal(t, []string{"q1", "q2"}, lp.AnsweredIDs)

	next, ok := got.Level("reactions")
	require.True(t, ok)
	assert.True(t, next.Unlocked, "next level unlocks on first completion")
	third, _ := got.Level("ions")
	assert.False(t, third.Unlocked)

	assert.Equal(t, 40, got.Stats.TotalXP)
	assert.Equal(t, 40, got.Stats.WeeklyXP)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), got.Stats.WeekStart)
	assert.Equal(t, 1, got.Stats.SessionsPlayed)

	require.Len(t, got.Mistakes, 1)
	assert.Equal(t, "m1", got.Mistakes[0].ID)
	assert.Equal(t, "elements", got.Mistakes[0].LevelID)
	assert.Equal(t, "X", got.Mistakes[0].Answer)
	assert.Equal(t, wednesday, got.Mistakes[0].CreatedAt)

	// Input is untouched.
	orig, _ := p.Level("elements")
	assert.False(t, orig.Completed)
	assert.Empty(t, p.Mistakes)
}

func TestApply_RepeatNeverShrinks(t *testing.T) {
	agg := fixedAggregator(t, wednesday)
	p := Sync(New("u1"), agg.Curriculum)

	p, err := agg.Apply(p, "elements", session.Result{XP: 60, CorrectIDs: []string{"q1", "q3"}})
	require.NoError(t, err)
	p, err = agg.Apply(p, "elements", session.Result{XP: 20, CorrectIDs: []string{"q2"}})
	require.NoError(t, err)

	lp, _ := p.Level("elements")
	assert.Equal(t, 60, lp.Score, "score keeps the best")
	assert.Equal(t, []string{"q1", "q2", "q3"}, lp.AnsweredIDs)
	assert.Equal(t, 80, p.Stats.TotalXP)
	assert.Equal(t, 2, p.Stats.SessionsPlayed)

	again, err := agg.Apply(p, "elements", session.Result{XP: 60, CorrectIDs: []string{"q1", "q3"}})
	require.NoError(t, err)
	lp2, _ := again.Level("elements")
	assert.Equal(t, lp.Score, lp2.Score)
	assert.Equal(t, lp.AnsweredIDs, lp2.AnsweredIDs)
}

func TestApply_WeeklyReset(t *testing.T) {
	agg := fixedAggregator(t, wednesday)
	p := Sync(New("u1"), agg.Curriculum)
	p.Stats = Stats{TotalXP: 100, WeeklyXP: 70, WeekStart: time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)}

	got, err := agg.Apply(p, "elements", session.Result{XP: 10})
	require.NoError(t, err)
	assert.Equal(t, 110, got.Stats.TotalXP)
	assert.Equal(t, 10, got.Stats.WeeklyXP)

	assert.Equal(t, 10, got.Stats.WeeklyXPAt(wednesday.Add(48*time.Hour)))
	assert.Equal(t, 0, got.Stats.WeeklyXPAt(wednesday.Add(7*24*time.Hour)))
}

func TestApply_Errors(t *testing.T) {
	agg := fixedAggregator(t, wednesday)
	p := New("u1")

	_, err := agg.Apply(p, "nope", session.Result{})
	assert.ErrorIs(t, err, ErrUnknownLevel)

	_, err = agg.Apply(p, "elements", session.Result{LevelID: "ions"})
	assert.Error(t, err)
}

func TestSync(t *testing.T) {
	reg, err := curriculum.Default()
	require.NoError(t, err)

	p := New("u1")
	p.Levels = []LevelProgress{{LevelID: "elements", AnsweredIDs: []string{"gone"}}}
	got := Sync(p, reg)

	require.Len(t, got.Levels, reg.Len())
	first, _ := got.Level("elements")
	assert.True(t, first.Unlocked)
	assert.Equal(t, []string{"gone"}, first.AnsweredIDs, "stale ids are tolerated")
	lvl, _ := reg.Level("elements")
	assert.Equal(t, lvl.QuestionCount(), first.TotalQuestions)
	second, _ := got.Level("reactions")
	assert.False(t, second.Unlocked)
}

func TestMastery(t *testing.T) {
	tests := []struct {
		lp   LevelProgress
		want float64
	}{
		{LevelProgress{}, 0},
		{LevelProgress{AnsweredIDs: []string{"a"}, TotalQuestions: 4}, 0.25},
		{LevelProgress{AnsweredIDs: []string{"a", "b", "c"}, TotalQuestions: 2}, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, tt.lp.Mastery(), 1e-9)
	}
}
