// Package mistakes shows the mistake book and lets the learner retry
// entries until they get them right.
package mistakes

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/game"
	"github.com/abhisek/chemquest/internal/progress"
	"github.com/abhisek/chemquest/internal/router"
	"github.com/abhisek/chemquest/internal/screen"
	"github.com/abhisek/chemquest/internal/ui/components"
	"github.com/abhisek/chemquest/internal/ui/layout"
	"github.com/abhisek/chemquest/internal/ui/theme"
)

type bookLoadedMsg struct {
	Book []progress.Mistake
	Err  error
}

// BookScreen lists recorded mistakes, newest first.
type BookScreen struct {
	game   *game.Game
	userID string

	// filter is an index into levels, or -1 for every level.
	filter int
	levels []string

	book     []progress.Mistake
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*BookScreen)(nil)
var _ screen.KeyHintProvider = (*BookScreen)(nil)
var _ screen.Resumer = (*BookScreen)(nil)

// New creates a BookScreen. An empty levelID shows every level.
func New(g *game.Game, userID, levelID string) *BookScreen {
	s := &BookScreen{game: g, userID: userID, filter: -1, levels: g.Registry().LevelIDs()}
	for i, id := range s.levels {
		if id == levelID {
			s.filter = i
		}
	}
	return s
}

func (s *BookScreen) Init() tea.Cmd {
	return s.load()
}

// Resume reloads the book after a drill.
func (s *BookScreen) Resume() tea.Cmd {
	return s.load()
}

func (s *BookScreen) load() tea.Cmd {
	g, userID, levelID := s.game, s.userID, s.levelID()
	return func() tea.Msg {
		book, err := g.Mistakes(context.Background(), userID, levelID)
		return bookLoadedMsg{Book: book, Err: err}
	}
}

func (s *BookScreen) levelID() string {
	if s.filter < 0 || s.filter >= len(s.levels) {
		return ""
	}
	return s.levels[s.filter]
}

func (s *BookScreen) Title() string {
	return "Mistake Book"
}

func (s *BookScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Retry"},
		{Key: "Tab", Description: "Filter level"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *BookScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case bookLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.book = msg.Book
		s.selected = min(s.selected, max(len(s.book)-1, 0))

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			s.selected = max(s.selected-1, 0)
		case "down", "j":
			s.selected = min(s.selected+1, max(len(s.book)-1, 0))
		case "tab":
			s.filter++
			if s.filter >= len(s.levels) {
				s.filter = -1
			}
			s.selected = 0
			return s, s.load()
		case "enter":
			if s.selected < len(s.book) {
				return s, router.Push(NewDrill(s.game, s.userID, s.book[s.selected]))
			}
		}
	}
	return s, nil
}

func (s *BookScreen) View(width, height int) string {
	var b strings.Builder

	filter := "All levels"
	if id := s.levelID(); id != "" {
		if l, ok := s.game.Registry().Level(id); ok {
			filter = l.Title
		}
	}
	b.WriteString(layout.Centered(theme.Subtitle.Render(fmt.Sprintf("%s · %d to review", filter, len(s.book))), width))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width))
	b.WriteString("\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(layout.Centered(theme.Incorrect.Render("Could not load mistakes: "+s.errMsg), width))
		return b.String()
	case !s.loaded:
		b.WriteString(layout.Centered(theme.Hint.Render("Loading..."), width))
		return b.String()
	case len(s.book) == 0:
		b.WriteString(layout.Centered(theme.Correct.Render("Nothing to review. Great work!"), width))
		return b.String()
	}

	cw := min(width-8, 80)
	// Leave room for the header lines and the detail pane.
	visible := max(height-12, 3)
	start := 0
	if s.selected >= visible {
		start = s.selected - visible + 1
	}
	end := min(start+visible, len(s.book))

	for i := start; i < end; i++ {
		m := s.book[i]
		prompt := truncate(components.Formula(m.Question.Prompt), cw-18)
		line := fmt.Sprintf("%-10s %s", m.CreatedAt.Format("Jan 02"), prompt)
		style := lipgloss.NewStyle().Foreground(theme.Text)
		prefix := "  "
		if i == s.selected {
			style = theme.Selected
			prefix = "▸ "
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Width(cw).Render(prefix+line)))
		b.WriteString("\n")
	}

	m := s.book[s.selected]
	detail := theme.Hint.Render("You answered: ") + theme.Incorrect.Render(components.Formula(orDash(m.Answer)))
	b.WriteString("\n")
	b.WriteString(layout.Centered(detail, width))
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
