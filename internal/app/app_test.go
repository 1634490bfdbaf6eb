package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chemquest/internal/game/gametest"
	"github.com/abhisek/chemquest/internal/router"
	"github.com/abhisek/chemquest/internal/screen"
	"github.com/abhisek/chemquest/internal/screens/welcome"
)

type stubScreen struct {
	title   string
	escapes bool
	keys    int
}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(tea.KeyPressMsg); ok {
		s.keys++
	}
	return s, nil
}
func (s *stubScreen) View(int, int) string { return "stub " + s.title }
func (s *stubScreen) Title() string        { return s.title }
func (s *stubScreen) HandlesEscape() bool  { return s.escapes }

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(AppModel), cmd
}

func TestStartsOnSplash(t *testing.T) {
	m := newAppModel(gametest.New(t, false), "mei")
	if _, ok := m.router.Active().(*welcome.WelcomeScreen); !ok {
		t.Errorf("active = %T, want splash", m.router.Active())
	}
}

func TestHeaderMessages(t *testing.T) {
	m := AppModel{router: router.New(&stubScreen{title: "Lab"})}
	m, _ = update(t, m, screen.StatsMsg{TotalXP: 120, WeeklyXP: 30})
	m, _ = update(t, m, screen.OfflineMsg{Offline: true})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	if m.stats.TotalXP != 120 || m.stats.WeeklyXP != 30 || !m.stats.Offline {
		t.Errorf("stats = %+v", m.stats)
	}
	content := m.frame()
	for _, want := range []string{"120 XP", "30 this week", "local mode", "stub Lab"} {
		if !strings.Contains(content, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestEscapePopsUnlessHandled(t *testing.T) {
	root := &stubScreen{title: "Lab"}
	m := AppModel{router: router.New(root)}

	if _, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape}); cmd != nil {
		t.Error("esc on the root should do nothing")
	}

	m.router.Push(&stubScreen{title: "Book"})
	_, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("esc should pop a pushed screen")
	}

	quiz := &stubScreen{title: "Quiz", escapes: true}
	m.router.Push(quiz)
	if _, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape}); cmd != nil {
		t.Error("a screen handling esc should not be popped")
	}
	if quiz.keys != 1 {
		t.Errorf("screen saw %d keys, want 1", quiz.keys)
	}
}

func TestTooSmall(t *testing.T) {
	m := AppModel{router: router.New(&stubScreen{})}
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(m.frame(), "Terminal too small") {
		t.Error("expected size warning")
	}
}
