package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/game"
	"github.com/abhisek/chemquest/internal/mistakes"
	"github.com/abhisek/chemquest/internal/progress"
	"github.com/abhisek/chemquest/internal/router"
	"github.com/abhisek/chemquest/internal/screen"
	"github.com/abhisek/chemquest/internal/screens/history"
	"github.com/abhisek/chemquest/internal/screens/loading"
	mistakescreen "github.com/abhisek/chemquest/internal/screens/mistakes"
	"github.com/abhisek/chemquest/internal/ui/components"
	"github.com/abhisek/chemquest/internal/ui/layout"
	"github.com/abhisek/chemquest/internal/ui/theme"
)

type profileLoadedMsg struct {
	Profile progress.Profile
	Err     error
}

// HomeScreen is the level map and main menu.
type HomeScreen struct {
	game   *game.Game
	userID string

	profile progress.Profile
	loaded  bool
	errMsg  string

	menu   components.Menu
	levels []curriculum.Level
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen for userID.
func New(g *game.Game, userID string) *HomeScreen {
	h := &HomeScreen{
		game:    g,
		userID:  userID,
		profile: progress.New(userID),
		levels:  g.Registry().Levels(),
	}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Resume reloads the profile after a quiz or the mistake book.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	g, userID := h.game, h.userID
	return func() tea.Msg {
		p, err := g.Profile(context.Background(), userID)
		return profileLoadedMsg{Profile: p, Err: err}
	}
}

func (h *HomeScreen) Title() string {
	return "Lab"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "m", Description: "Mistakes"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.profile = msg.Profile
		h.loaded = true
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.menuItems())
		h.menu.Select(selected)
		p := msg.Profile
		return h, func() tea.Msg {
			return screen.StatsMsg{TotalXP: p.Stats.TotalXP, WeeklyXP: p.Stats.WeeklyXPAt(time.Now())}
		}

	case tea.KeyPressMsg:
		if msg.String() == "m" {
			return h, h.openMistakes("")
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(h.levels)+3)
	for _, l := range h.levels {
		lp, _ := h.profile.Level(l.ID)
		open := lp.Unlocked || h.game.Privileged()
		id := l.ID
		items = append(items, components.MenuItem{
			Label:    fmt.Sprintf("%d. %s", l.Order, l.Title),
			Note:     renderLevelNote(lp.Unlocked, lp.Completed, lp.Mastery(), len(mistakes.Filter(h.profile.Mistakes, l.ID))),
			Disabled: !open,
			Action: func() tea.Cmd {
				return router.Push(loading.New(h.game, h.userID, id))
			},
		})
	}
	items = append(items,
		components.MenuItem{
			Label: "MISTAKE BOOK",
			Note:  fmt.Sprintf("%d", len(h.profile.Mistakes)),
			Action: func() tea.Cmd {
				return h.openMistakes("")
			},
		},
		components.MenuItem{
			Label: "HISTORY",
			Action: func() tea.Cmd {
				return router.Push(history.New(h.game, h.userID))
			},
		},
		components.MenuItem{
			Label:  "LEAVE LAB",
			Action: func() tea.Cmd { return tea.Quit },
		},
	)
	return items
}

func (h *HomeScreen) openMistakes(levelID string) tea.Cmd {
	return router.Push(mistakescreen.New(h.game, h.userID, levelID))
}

func (h *HomeScreen) mascot() MascotVariant {
	switch {
	case len(h.profile.Mistakes) >= alertMistakes:
		return MascotAlert
	case h.allCompleted():
		return MascotCelebrating
	default:
		return MascotIdle
	}
}

func (h *HomeScreen) allCompleted() bool {
	if !h.loaded || len(h.levels) == 0 {
		return false
	}
	for _, l := range h.levels {
		if lp, _ := h.profile.Level(l.ID); !lp.Completed {
			return false
		}
	}
	return true
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header and footer.
	compact := layout.IsCompact(width, height+8)
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, components.Centered(RenderMascot(h.mascot()), cw))
	}
	sections = append(sections, renderStats(
		h.profile.Stats.TotalXP,
		h.profile.Stats.WeeklyXPAt(time.Now()),
		len(h.profile.Mistakes),
		cw, compact))

	menu := h.menu.View()
	if bar := h.selectedMastery(cw); bar != "" {
		menu += "\n" + bar
	}
	sections = append(sections, lipgloss.NewStyle().Width(cw).Render(menu))

	if h.errMsg != "" {
		sections = append(sections, components.Centered(
			lipgloss.NewStyle().Foreground(theme.Error).Render("Could not load profile: "+h.errMsg), cw))
	}

	return components.BenchFrame(strings.Join(sections, "\n\n"), width, height)
}

// selectedMastery renders the mastery bar of the highlighted level.
func (h *HomeScreen) selectedMastery(cw int) string {
	if h.menu.Selected >= len(h.levels) {
		return ""
	}
	l := h.levels[h.menu.Selected]
	lp, _ := h.profile.Level(l.ID)
	label := fmt.Sprintf("%d/%d", len(lp.AnsweredIDs), max(lp.TotalQuestions, l.QuestionCount()))
	return "  " + components.NewProgressBar(label, lp.Mastery(), true, cw-4).View()
}
