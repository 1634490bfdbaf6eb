package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/ui/theme"
)

const bannerArt = `
  ██████╗██╗  ██╗███████╗███╗   ███╗ ██████╗ ██╗   ██╗███████╗███████╗████████╗
 ██╔════╝██║  ██║██╔════╝████╗ ████║██╔═══██╗██║   ██║██╔════╝██╔════╝╚══██╔══╝
 ██║     ███████║█████╗  ██╔████╔██║██║   ██║██║   ██║█████╗  ███████╗   ██║
 ██║     ██╔══██║██╔══╝  ██║╚██╔╝██║██║▄▄ ██║██║   ██║██╔══╝  ╚════██║   ██║
 ╚██████╗██║  ██║███████╗██║ ╚═╝ ██║╚██████╔╝╚██████╔╝███████╗███████║   ██║
  ╚═════╝╚═╝  ╚═╝╚══════╝╚═╝     ╚═╝ ╚══▀▀═╝  ╚═════╝ ╚══════╝╚══════╝   ╚═╝`

const bannerCompact = "C H E M Q U E S T"

// bannerMinWidth is the narrowest terminal that fits bannerArt.
const bannerMinWidth = 82

// RenderBanner returns the CHEMQUEST banner, or a spaced-letter fallback
// on narrow terminals.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
