package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/router"
	"github.com/abhisek/chemquest/internal/screen"
	"github.com/abhisek/chemquest/internal/session"
	"github.com/abhisek/chemquest/internal/ui/components"
	"github.com/abhisek/chemquest/internal/ui/layout"
	"github.com/abhisek/chemquest/internal/ui/theme"
)

// Data is what the summary shows about a finished level.
type Data struct {
	LevelTitle string
	Summary    session.Summary
	TotalXP    int
	WeeklyXP   int
	// Mastery is the level's mastery after this run.
	Mastery float64
	// Unlocked lists the titles of levels this run unlocked.
	Unlocked []string
}

// SummaryScreen displays the result of a finished level.
type SummaryScreen struct {
	data Data
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(data Data) *SummaryScreen {
	return &SummaryScreen{data: data}
}

func (s *SummaryScreen) Init() tea.Cmd {
	total, weekly := s.data.TotalXP, s.data.WeeklyXP
	return func() tea.Msg {
		return screen.StatsMsg{TotalXP: total, WeeklyXP: weekly}
	}
}

func (s *SummaryScreen) Title() string {
	return "Level Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Back to lab"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "space":
			return s, router.PopToRoot
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	d := s.data
	sum := d.Summary

	var b strings.Builder

	b.WriteString(layout.Centered(lipgloss.NewStyle().
		Foreground(theme.Flame).
		Bold(true).
		Render(d.LevelTitle+" complete!"), width))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Flame).
		Render(fmt.Sprintf("+%d XP", sum.XP)), width))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Questions: %d        First try: %d        Accuracy: %.0f%%",
		sum.Total, sum.FirstTry, sum.Accuracy()*100)
	b.WriteString(layout.Centered(theme.Body.Render(stats), width))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(theme.Subtitle.Render("Breakdown"), width))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width))
	b.WriteString("\n\n")

	rows := []struct {
		label string
		n     int
		style lipgloss.Style
	}{
		{"Second try", sum.SecondTry, lipgloss.NewStyle().Foreground(theme.Secondary)},
		{"Missed", sum.Missed, lipgloss.NewStyle().Foreground(theme.Error)},
		{"Recalled", sum.Recalled, lipgloss.NewStyle().Foreground(theme.Success)},
		{"Forgotten", sum.Forgotten, lipgloss.NewStyle().Foreground(theme.Accent)},
		{"Skipped", sum.Skipped, lipgloss.NewStyle().Foreground(theme.TextDim)},
	}
	for _, r := range rows {
		if r.n == 0 {
			continue
		}
		b.WriteString(layout.Centered(r.style.Render(fmt.Sprintf("%-12s %3d", r.label, r.n)), width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	bar := components.NewProgressBar("Mastery", d.Mastery, true, min(width-8, 60))
	b.WriteString(layout.Centered(bar.View(), width))
	b.WriteString("\n")

	if sum.Mistakes > 0 {
		b.WriteString("\n")
		b.WriteString(layout.Centered(theme.Hint.Render(
			fmt.Sprintf("%d question(s) went into your mistake book.", sum.Mistakes)), width))
		b.WriteString("\n")
	}

	for _, title := range d.Unlocked {
		b.WriteString("\n")
		b.WriteString(layout.Centered(theme.Correct.Render("🔓 Unlocked: "+title), width))
	}

	return b.String()
}
