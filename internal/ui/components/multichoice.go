package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/ui/theme"
)

// OptionList renders a lettered option list. It has no state of its own:
// the quiz session owns the selection.
type OptionList struct {
	Options []string
	// Cursor is the highlighted option, or -1.
	Cursor int
	// Chosen is the learner's pick, or -1.
	Chosen int
	// Correct is revealed only when Graded.
	Correct int
	Graded  bool
}

// Label returns the letter for option i.
func Label(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

// View renders the options one per line.
func (o OptionList) View() string {
	var b strings.Builder
	for i, opt := range o.Options {
		prefix := "  "
		if i == o.Cursor && !o.Graded {
			prefix = "▸ "
		}
		marker := " "
		if i == o.Chosen {
			marker = "●"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, marker, Label(i), Formula(opt))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case o.Graded && i == o.Correct:
			style = theme.Correct
		case o.Graded && i == o.Chosen:
			style = theme.Incorrect
		case o.Graded:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == o.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
