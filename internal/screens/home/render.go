package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/ui/components"
	"github.com/abhisek/chemquest/internal/ui/theme"
)

const titleFull = ` ╔═╗╦ ╦╔═╗╔╦╗╔═╗ ╦ ╦╔═╗╔═╗╔╦╗
 ║  ╠═╣║╣ ║║║║═╬╗║ ║║╣ ╚═╗ ║
 ╚═╝╩ ╩╚═╝╩ ╩╚═╝╚╚═╝╚═╝╚═╝ ╩ `

const titleCompact = "C · H · E · M · Q · U · E · S · T"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Flame).
		Bold(true)

	title := titleFull
	if compact {
		title = titleCompact
	}
	return components.Centered(style.Render(title), cw)
}

// renderStats renders XP, weekly XP and the mistake count.
func renderStats(totalXP, weeklyXP, mistakes, cw int, compact bool) string {
	xpStyle := lipgloss.NewStyle().Foreground(theme.Flame).Bold(true)
	weekStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	mistakeStyle := lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	mistakeText := dimStyle.Render("✓ BOOK CLEAR")
	if mistakes > 0 {
		mistakeText = mistakeStyle.Render(fmt.Sprintf("✗ %d TO REVIEW", mistakes))
	}

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			xpStyle.Render(fmt.Sprintf("⚗%d", totalXP)),
			weekStyle.Render(fmt.Sprintf("★%d", weeklyXP)),
			mistakeStyle.Render(fmt.Sprintf("✗%d", mistakes)),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			xpStyle.Render(fmt.Sprintf("⚗ %d XP", totalXP)),
			weekStyle.Render(fmt.Sprintf("★ %d THIS WEEK", weeklyXP)),
			mistakeText,
		)
	}
	return components.StatsBox(stats, cw)
}

// renderLevelNote summarises a level's state for its menu line.
func renderLevelNote(unlocked, completed bool, mastery float64, mistakes int) string {
	if !unlocked {
		return "🔒 locked"
	}
	note := fmt.Sprintf("%3d%% mastered", int(mastery*100))
	if completed {
		note = "✓ " + note
	}
	if mistakes > 0 {
		note += fmt.Sprintf("  ✗%d", mistakes)
	}
	return note
}
