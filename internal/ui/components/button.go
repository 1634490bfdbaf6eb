package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/ui/theme"
)

// Button is a labelled action that is greyed out until enabled, such as
// the quiz submit button.
type Button struct {
	Label   string
	Key     string
	Enabled bool
}

// View renders the button.
func (b Button) View() string {
	label := b.Label
	if b.Key != "" {
		label = "[" + b.Key + "] " + label
	}
	if b.Enabled {
		return lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.BgDark).
			Background(theme.Success).
			Padding(0, 2).
			Render(label)
	}
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Background(theme.BgCard).
		Padding(0, 2).
		Render(label)
}
