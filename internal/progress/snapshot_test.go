package progress

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/store"
)

func TestSnapshotRoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	p := Profile{
		UserID: "u1",
		Stats:  Stats{TotalXP: 90, WeeklyXP: 30, WeekStart: now, SessionsPlayed: 3},
		Levels: []LevelProgress{{LevelID: "elements", Unlocked: true, Completed: true, Score: 50, AnsweredIDs: []string{"a", "b"}, TotalQuestions: 10}},
		Mistakes: []Mistake{{
			ID:      "m1",
			LevelID: "elements",
			Question: curriculum.Question{
				ID:      "salt",
				Prompt:  "Table salt?",
				Payload: curriculum.FreeText{Answer: "NaCl/氯化钠"},
			},
			Answer:    "NaClO",
			CreatedAt: now,
		}},
	}

	snap, err := ToSnapshot(p)
	require.NoError(t, err)
	assert.Equal(t, SnapshotVersion, snap.Version)

	got, errs := FromSnapshot(snap)
	assert.Empty(t, errs)
	assert.Equal(t, p, got)
}

func TestFromSnapshot_DropsUndecodableMistakes(t *testing.T) {
	snap := &store.ProfileSnapshot{
		UserID: "u1",
		Mistakes: []store.MistakeData{
			{ID: "bad", Question: json.RawMessage(`{"id":"x","kind":"riddle"}`)},
			{ID: "ok", Question: json.RawMessage(`{"id":"y","kind":"free_text","prompt":"p","answer":"a"}`)},
		},
	}
	got, errs := FromSnapshot(snap)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "bad")
	require.Len(t, got.Mistakes, 1)
	assert.Equal(t, "ok", got.Mistakes[0].ID)
}

func TestLoad_NewProfile(t *testing.T) {
	reg, err := curriculum.Default()
	require.NoError(t, err)
	repo := &memRepo{}

	p, warnings, err := Load(context.Background(), repo, "fresh", reg)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "fresh", p.UserID)
	assert.Len(t, p.Levels, reg.Len())
}
