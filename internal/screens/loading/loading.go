// Package loading hydrates a level's question bank before a quiz starts.
package loading

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/game"
	"github.com/abhisek/chemquest/internal/router"
	"github.com/abhisek/chemquest/internal/screen"
	"github.com/abhisek/chemquest/internal/screens/quiz"
	"github.com/abhisek/chemquest/internal/ui/layout"
	"github.com/abhisek/chemquest/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type spinnerTickMsg time.Time

type preparedMsg struct {
	Prepared game.Prepared
	Err      error
}

// LoadingScreen prepares a level in the background. Esc cancels.
type LoadingScreen struct {
	game    *game.Game
	userID  string
	levelID string

	ctx    context.Context
	cancel context.CancelFunc

	frame  int
	errMsg string
}

var _ screen.Screen = (*LoadingScreen)(nil)
var _ screen.EscapeHandler = (*LoadingScreen)(nil)

// New creates a LoadingScreen for levelID.
func New(g *game.Game, userID, levelID string) *LoadingScreen {
	ctx, cancel := context.WithCancel(context.Background())
	return &LoadingScreen{game: g, userID: userID, levelID: levelID, ctx: ctx, cancel: cancel}
}

func (s *LoadingScreen) Init() tea.Cmd {
	g, ctx, userID, levelID := s.game, s.ctx, s.userID, s.levelID
	return tea.Batch(
		func() tea.Msg {
			p, err := g.Prepare(ctx, userID, levelID, 0)
			return preparedMsg{Prepared: p, Err: err}
		},
		tick(),
	)
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return spinnerTickMsg(t) })
}

func (s *LoadingScreen) Title() string {
	return "Preparing"
}

func (s *LoadingScreen) HandlesEscape() bool { return true }

func (s *LoadingScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
}

func (s *LoadingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTickMsg:
		if s.errMsg != "" || s.ctx.Err() != nil {
			return s, nil
		}
		s.frame = (s.frame + 1) % len(spinnerFrames)
		return s, tick()

	case preparedMsg:
		if errors.Is(msg.Err, context.Canceled) {
			return s, nil
		}
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		offline := msg.Prepared.Offline
		return s, tea.Batch(
			func() tea.Msg { return screen.OfflineMsg{Offline: offline} },
			router.Replace(quiz.New(s.game, s.userID, msg.Prepared)),
		)

	case tea.KeyPressMsg:
		if msg.String() == "esc" || s.errMsg != "" {
			s.cancel()
			return s, router.Pop
		}
	}
	return s, nil
}

func (s *LoadingScreen) View(width, height int) string {
	var body string
	if s.errMsg != "" {
		body = lipgloss.NewStyle().Foreground(theme.Error).Render("Could not start level: "+s.errMsg) +
			"\n\n" + theme.Hint.Render("Press any key to go back")
	} else {
		body = lipgloss.NewStyle().Foreground(theme.Secondary).Render(spinnerFrames[s.frame]) +
			"  " + theme.Body.Render("Mixing reagents...")
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}
