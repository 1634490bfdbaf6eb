// Package gametest builds a Game over an in-memory store for screen and
// handler tests.
package gametest

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/game"
	"github.com/abhisek/chemquest/internal/logging"
	"github.com/abhisek/chemquest/internal/progress"
	"github.com/abhisek/chemquest/internal/session"
	"github.com/abhisek/chemquest/internal/store"
)

// New returns a Game on the bundled curriculum. Saves are debounced past
// the end of the test; Close flushes them during cleanup.
func New(t testing.TB, privileged bool) *game.Game {
	t.Helper()
	st, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	reg, err := curriculum.Default()
	if err != nil {
		t.Fatalf("load curriculum: %v", err)
	}
	logger := logging.Discard()
	g := game.New(game.Options{
		Registry:   reg,
		Profiles:   st.ProfileRepo(),
		Events:     st.EventRepo(),
		Planner:    session.NewSeededPlanner(3),
		Saver:      progress.NewSaver(st.ProfileRepo(), progress.WithDebounce(time.Hour), progress.WithLogger(logger)),
		Privileged: privileged,
		Logger:     logger,
	})
	t.Cleanup(func() { g.Close(context.Background()) })
	return g
}

// Prepared builds a single-phase session of the named questions.
func Prepared(t testing.TB, g *game.Game, levelID string, ids ...string) game.Prepared {
	t.Helper()
	l, ok := g.Registry().Level(levelID)
	if !ok {
		t.Fatalf("unknown level %s", levelID)
	}
	qs := make([]curriculum.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := l.Question(id)
		if !ok {
			t.Fatalf("unknown question %s", id)
		}
		qs = append(qs, q)
	}
	return game.Prepared{Level: l.WithPhases([]curriculum.Phase{{ID: "test", Title: "Test", Questions: qs}})}
}

// Fail records a finished session in which every named question was
// missed, so each lands in the mistake book.
func Fail(t testing.TB, g *game.Game, userID, levelID string, ids ...string) {
	t.Helper()
	l, _ := g.Registry().Level(levelID)
	res := session.Result{LevelID: levelID}
	for _, id := range ids {
		q, ok := l.Question(id)
		if !ok {
			t.Fatalf("unknown question %s", id)
		}
		res.Mistakes = append(res.Mistakes, session.MistakePair{Question: q, Answer: "?"})
	}
	sum := session.Summary{LevelID: levelID, Total: len(ids), Mistakes: len(ids)}
	if _, err := g.Complete(context.Background(), userID, res, sum, time.Minute); err != nil {
		t.Fatalf("complete: %v", err)
	}
}
