// Package welcome is the splash shown when the lab opens.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/router"
	"github.com/abhisek/chemquest/internal/screen"
	"github.com/abhisek/chemquest/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	// bubblesStart is when bubbles begin to rise; keys skip from here.
	bubblesStart = 400 * time.Millisecond
	bannerStart  = 1000 * time.Millisecond
	// totalDur ends the splash without a key press.
	totalDur = 2500 * time.Millisecond
)

const flaskArt = `     ┌─┐
     │ │
    ╱   ╲
   ╱     ╲
  ╱ ◉   ◉ ╲
 ╱    ◡    ╲
 ╲▁▁▁▁▁▁▁▁▁╱`

// bubbleRows are drawn above the flask neck, one frame per tick.
var bubbleRows = [][]string{
	{"   °     ", "      o  ", "    O    "},
	{"      °  ", "   o     ", "     O   "},
	{"    °    ", "     o   ", "   O     "},
}

type tickMsg time.Time

// WelcomeScreen animates the flask and then replaces itself with the
// screen built by next.
type WelcomeScreen struct {
	next         func() screen.Screen
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that hands over to next().
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		w.elapsed += tickInterval
		w.tickCount++
		if w.elapsed >= totalDur {
			return w, w.transition()
		}
		return w, tick()

	case tea.KeyPressMsg:
		if w.elapsed >= bubblesStart {
			return w, w.transition()
		}
	}
	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	return router.Replace(w.next())
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	if w.elapsed >= bubblesStart {
		rows := bubbleRows[w.tickCount%len(bubbleRows)]
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Flask).Render(strings.Join(rows, "\n")))
	}
	sections = append(sections, lipgloss.NewStyle().Foreground(theme.Secondary).Render(flaskArt))

	if w.elapsed >= bannerStart {
		sections = append(sections,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Every reaction counts."),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("press any key to enter the lab"),
		)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
