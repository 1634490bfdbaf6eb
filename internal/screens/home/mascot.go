package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default indigo
	MascotCelebrating                      // Yellow, bubbling: every level complete
	MascotAlert                            // Amber, exclamation: mistakes piling up
)

const mascotIdle = `   ┌─┐
   │ │
  ╱ ◉ ◉╲
 ╱   ▽  ╲
└────────┘`

const mascotCelebrating = `  ° o °
   ┌─┐
   │ │
  ╱ ★ ★╲
 ╱   ▿  ╲
└────────┘`

const mascotAlert = `   ┌─┐
   │ │  !
  ╱ ◉ ◉╲
 ╱   ▽  ╲
└────────┘`

// alertMistakes is the book size at which the mascot starts to worry.
const alertMistakes = 5

// RenderMascot returns the mascot ASCII art for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Primary

	switch v {
	case MascotCelebrating:
		art, fg = mascotCelebrating, theme.Flame
	case MascotAlert:
		art, fg = mascotAlert, theme.Accent
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
