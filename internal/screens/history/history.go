package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/game"
	"github.com/abhisek/chemquest/internal/screen"
	"github.com/abhisek/chemquest/internal/store"
	"github.com/abhisek/chemquest/internal/ui/layout"
	"github.com/abhisek/chemquest/internal/ui/theme"
)

// pageSize is how many recent events the screen loads.
const pageSize = 50

type historyLoadedMsg struct {
	Events []store.SessionEvent
	Err    error
}

// HistoryScreen lists recent level runs, newest first.
type HistoryScreen struct {
	game     *game.Game
	userID   string
	events   []store.SessionEvent
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(g *game.Game, userID string) *HistoryScreen {
	return &HistoryScreen{
		game:     g,
		userID:   userID,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	g, userID := s.game, s.userID
	return func() tea.Msg {
		evs, err := g.History(context.Background(), userID, pageSize)
		return historyLoadedMsg{Events: evs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No runs yet. Pick a level to start!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, ev := range s.events {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-18s  %-9s  %s",
			prefix, ev.Timestamp.Format("Jan 02 15:04"), s.levelTitle(ev.LevelID), ev.Action, formatDuration(ev.DurationSecs))
		if ev.Action == game.ActionComplete {
			line += fmt.Sprintf("  +%d XP", ev.XP)
		}

		style := lipgloss.NewStyle().Foreground(actionColor(ev.Action))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(details(ev))))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (s *HistoryScreen) levelTitle(id string) string {
	if l, ok := s.game.Registry().Level(id); ok {
		return l.Title
	}
	return id
}

func details(ev store.SessionEvent) string {
	switch ev.Action {
	case game.ActionComplete:
		acc := 0.0
		if ev.Questions > 0 {
			acc = float64(ev.FirstTry) / float64(ev.Questions) * 100
		}
		return fmt.Sprintf("    %d questions  %d first try (%.0f%%)  %d mistakes",
			ev.Questions, ev.FirstTry, acc, ev.Mistakes)
	case game.ActionAbandon:
		return "    Left before finishing"
	default:
		return "    Level started"
	}
}

func formatDuration(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func actionColor(action string) color.Color {
	switch action {
	case game.ActionComplete:
		return theme.Success
	case game.ActionAbandon:
		return theme.Accent
	default:
		return theme.TextDim
	}
}
