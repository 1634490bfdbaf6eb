package mistakes

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/game"
	"github.com/abhisek/chemquest/internal/grading"
	"github.com/abhisek/chemquest/internal/mistakes"
	"github.com/abhisek/chemquest/internal/progress"
	"github.com/abhisek/chemquest/internal/router"
	"github.com/abhisek/chemquest/internal/screen"
	"github.com/abhisek/chemquest/internal/ui/components"
	"github.com/abhisek/chemquest/internal/ui/layout"
	"github.com/abhisek/chemquest/internal/ui/theme"
)

type ackDoneMsg struct{}

type resolvedMsg struct {
	Err error
}

// DrillScreen retries one mistake. A correct answer is acknowledged for
// mistakes.AckDelay before the entry leaves the book.
type DrillScreen struct {
	game   *game.Game
	userID string
	drill  *mistakes.Drill

	input   components.TextInput
	cursor  int
	flipped bool
	// placed holds bank indices in slot order for ordering questions.
	placed []int

	errMsg string
}

var _ screen.Screen = (*DrillScreen)(nil)
var _ screen.KeyHintProvider = (*DrillScreen)(nil)
var _ screen.EscapeHandler = (*DrillScreen)(nil)

// NewDrill creates a DrillScreen for m.
func NewDrill(g *game.Game, userID string, m progress.Mistake) *DrillScreen {
	return &DrillScreen{
		game:   g,
		userID: userID,
		drill:  mistakes.NewDrill(m),
		input:  components.NewTextInput("Type your answer...", 120),
	}
}

func (s *DrillScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *DrillScreen) Title() string {
	return "Retry"
}

// HandlesEscape keeps Esc from leaving while a solved mistake is being
// acknowledged.
func (s *DrillScreen) HandlesEscape() bool { return s.drill.Solved }

func (s *DrillScreen) KeyHints() []layout.KeyHint {
	if s.drill.Solved {
		return []layout.KeyHint{{Key: "", Description: "Well done!"}}
	}
	switch s.question().Kind() {
	case curriculum.KindFlashcard:
		if s.flipped {
			return []layout.KeyHint{{Key: "Y", Description: "Recalled"}, {Key: "N", Description: "Forgot"}, {Key: "Esc", Description: "Back"}}
		}
		return []layout.KeyHint{{Key: "Space", Description: "Flip"}, {Key: "Esc", Description: "Back"}}
	case curriculum.KindOrdering:
		return []layout.KeyHint{{Key: "1-9", Description: "Place"}, {Key: "Backspace", Description: "Undo"}, {Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Back"}}
	case curriculum.KindFreeText:
		return []layout.KeyHint{{Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{{Key: "↑↓/1-9", Description: "Choose"}, {Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Back"}}
}

func (s *DrillScreen) question() curriculum.Question {
	return s.drill.Mistake.Question
}

func (s *DrillScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ackDoneMsg:
		g, userID, id := s.game, s.userID, s.drill.Mistake.ID
		return s, func() tea.Msg {
			_, err := g.ResolveMistake(context.Background(), userID, id)
			return resolvedMsg{Err: err}
		}

	case resolvedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		return s, router.Pop

	case tea.KeyPressMsg:
		if s.drill.Solved {
			return s, nil
		}
		return s.handleKey(msg)
	}

	if s.question().Kind() == curriculum.KindFreeText {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *DrillScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	q := s.question()

	switch p := q.Payload.(type) {
	case curriculum.MultipleChoice:
		return s, s.choose(key, len(p.Options))
	case curriculum.Deduction:
		return s, s.choose(key, len(p.Suspects))

	case curriculum.FreeText:
		if key == "enter" {
			return s, s.submit(grading.Type(s.input.Value()))
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		s.drill.Shake = false
		return s, cmd

	case curriculum.Flashcard:
		if !s.flipped {
			if key == "enter" || key == "space" {
				s.flipped = true
			}
			return s, nil
		}
		switch key {
		case "y", "Y":
			return s, s.submit(grading.Recall(true))
		case "n", "N":
			s.flipped = false
			return s, s.submit(grading.Recall(false))
		}

	case curriculum.Ordering:
		switch key {
		case "backspace":
			if len(s.placed) > 0 {
				s.placed = s.placed[:len(s.placed)-1]
			}
		case "enter":
			seq := make([]string, len(s.placed))
			for i, idx := range s.placed {
				seq[i] = p.Items[idx].Content
			}
			return s, s.submit(grading.Place(seq...))
		default:
			if i, ok := digit(key); ok && i < len(p.Items) && len(s.placed) < len(p.Correct) && !slices.Contains(s.placed, i) {
				s.placed = append(s.placed, i)
				s.drill.Shake = false
			}
		}
	}
	return s, nil
}

func (s *DrillScreen) choose(key string, n int) tea.Cmd {
	switch key {
	case "up", "k":
		s.cursor = max(s.cursor-1, 0)
	case "down", "j":
		s.cursor = min(s.cursor+1, max(n-1, 0))
	case "enter":
		return s.submit(grading.Choose(s.cursor))
	default:
		if i, ok := digit(key); ok && i < n {
			s.cursor = i
		}
	}
	return nil
}

// submit grades in. Incomplete answers are ignored.
func (s *DrillScreen) submit(in grading.Input) tea.Cmd {
	if !grading.Complete(s.question(), in) {
		return nil
	}
	out, err := s.drill.Submit(in)
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	if !out.Correct {
		return nil
	}
	return tea.Tick(mistakes.AckDelay, func(time.Time) tea.Msg { return ackDoneMsg{} })
}

func (s *DrillScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	q := s.question()
	m := s.drill.Mistake

	var b strings.Builder
	level := m.LevelID
	if l, ok := s.game.Registry().Level(m.LevelID); ok {
		level = l.Title
	}
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%s · %s · attempt %d", level, q.Kind().DisplayName(), s.drill.Attempts+1)))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Bold(true).Width(cw).Render(components.Formula(q.Prompt)))
	b.WriteString("\n\n")
	b.WriteString(components.Card(s.renderAnswer(q), cw, s.drill.Shake))
	b.WriteString("\n")

	switch {
	case s.errMsg != "":
		b.WriteString(theme.Incorrect.Render(s.errMsg))
	case s.drill.Solved:
		b.WriteString(theme.Correct.Render("Correct! Removing it from your book..."))
	case s.drill.Shake:
		b.WriteString(theme.Incorrect.Render("Not yet. Take another look."))
		if q.Hint != "" {
			b.WriteString("\n" + theme.Hint.Render("Hint: "+components.Formula(q.Hint)))
		}
	default:
		b.WriteString(theme.Hint.Render("Last time you answered: " + components.Formula(orDash(m.Answer))))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}

func (s *DrillScreen) renderAnswer(q curriculum.Question) string {
	switch p := q.Payload.(type) {
	case curriculum.MultipleChoice:
		return components.OptionList{Options: p.Options, Cursor: s.cursor, Chosen: -1}.View()

	case curriculum.Deduction:
		var b strings.Builder
		for i, c := range p.Clues {
			b.WriteString(fmt.Sprintf("%d. %s  →  %s\n", i+1, components.Formula(c.Stimulus),
				lipgloss.NewStyle().Foreground(theme.Flask).Render(components.Formula(c.Result))))
		}
		b.WriteString("\n")
		b.WriteString(components.OptionList{Options: p.Suspects, Cursor: s.cursor, Chosen: -1}.View())
		return b.String()

	case curriculum.FreeText:
		return "Answer: " + s.input.View()

	case curriculum.Flashcard:
		if !s.flipped {
			return theme.Hint.Render("Recall the answer, then press Space to flip.")
		}
		return lipgloss.NewStyle().Foreground(theme.Flame).Bold(true).Render(components.Formula(p.Back)) +
			"\n\n" + theme.Body.Render("Did you recall it?  [y]es  [n]o")

	case curriculum.Ordering:
		seq := make([]string, len(s.placed))
		for i, idx := range s.placed {
			seq[i] = components.Formula(p.Items[idx].Content)
		}
		var chips []string
		for i, it := range p.Items {
			style := theme.Chip
			if slices.Contains(s.placed, i) {
				style = theme.Locked
			}
			chips = append(chips, style.Render(fmt.Sprintf("%d %s", i+1, components.Formula(it.Content))))
		}
		return components.Formula(p.Template) + "\n\n" +
			theme.Body.Render(strings.Join(seq, "  ·  ")) + "\n\n" +
			strings.Join(chips, " ")
	}
	return ""
}

func digit(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	return int(key[0] - '1'), true
}
