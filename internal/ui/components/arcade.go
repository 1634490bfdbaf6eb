package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for framed screens.
// All boxes are rendered at this width so they visually align.
func ContentWidth(frameWidth int) int {
	// Leave room for the bench border (2) + inner padding (4)
	return min(max(frameWidth-6, 20), 72)
}

// BenchFrame wraps content in a double-border frame, centred vertically
// and horizontally within the given dimensions.
func BenchFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int, shake bool) string {
	style := theme.Card
	if shake {
		style = theme.ShakeCard
	}
	return style.Width(cw - 2).Render(content)
}

// StatsBox renders a one-line stats strip in a double border.
func StatsBox(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Flask).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(content)
}

// Centered renders s centred within width.
func Centered(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(s)
}
