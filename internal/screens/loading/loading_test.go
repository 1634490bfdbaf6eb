package loading

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chemquest/internal/game"
	"github.com/abhisek/chemquest/internal/game/gametest"
	"github.com/abhisek/chemquest/internal/router"
)

func TestLoading_PreparedReplacesWithQuiz(t *testing.T) {
	g := gametest.New(t, false)
	s := New(g, "mei", "elements")

	prep, err := g.Prepare(context.Background(), "mei", "elements", 0)
	if err != nil {
		t.Fatal(err)
	}
	_, cmd := s.Update(preparedMsg{Prepared: prep})
	if cmd == nil {
		t.Fatal("expected quiz to replace loading")
	}
}

func TestLoading_LockedLevelShowsError(t *testing.T) {
	g := gametest.New(t, false)
	s := New(g, "mei", "reactions")

	_, err := g.Prepare(context.Background(), "mei", "reactions", 0)
	if !errors.Is(err, game.ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
	s.Update(preparedMsg{Err: err})
	if !strings.Contains(s.View(100, 30), "locked") {
		t.Error("expected error in view")
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("any key should go back after an error")
	}
}

func TestLoading_EscCancels(t *testing.T) {
	g := gametest.New(t, false)
	s := New(g, "mei", "elements")
	if !s.HandlesEscape() {
		t.Fatal("loading should own Esc")
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected pop on Esc")
	}
	if s.ctx.Err() == nil {
		t.Error("expected preparation cancelled")
	}

	if _, cmd := s.Update(preparedMsg{Err: context.Canceled}); cmd != nil {
		t.Error("a cancelled preparation should be ignored")
	}
	if _, cmd := s.Update(spinnerTickMsg{}); cmd != nil {
		t.Error("spinner should stop after cancel")
	}
}

func TestLoading_SpinnerAdvances(t *testing.T) {
	s := New(gametest.New(t, false), "mei", "elements")
	s.Update(spinnerTickMsg{})
	if s.frame != 1 {
		t.Errorf("frame = %d, want 1", s.frame)
	}
}
