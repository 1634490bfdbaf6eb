// Package quiz is the interactive session screen. It owns no game rules:
// keys become session actions and session effects become commands.
package quiz

import (
	"context"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/game"
	"github.com/abhisek/chemquest/internal/progress"
	"github.com/abhisek/chemquest/internal/router"
	"github.com/abhisek/chemquest/internal/screen"
	"github.com/abhisek/chemquest/internal/screens/summary"
	"github.com/abhisek/chemquest/internal/session"
	"github.com/abhisek/chemquest/internal/ui/components"
	"github.com/abhisek/chemquest/internal/ui/layout"
)

const explainTimeout = 30 * time.Second

// QuizScreen implements screen.Screen for an active level.
type QuizScreen struct {
	game   *game.Game
	userID string
	level  curriculum.Level

	state   session.State
	pending []session.Effect
	started time.Time

	ctx    context.Context
	cancel context.CancelFunc

	input   components.TextInput
	cursor  int
	flipped bool

	confirmQuit   bool
	explainFailed int // serial whose explanation failed
	errMsg        string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.EscapeHandler = (*QuizScreen)(nil)

// New starts a session for a prepared level.
func New(g *game.Game, userID string, prep game.Prepared) *QuizScreen {
	return newWithSeed(g, userID, prep, uint64(time.Now().UnixNano()))
}

func newWithSeed(g *game.Game, userID string, prep game.Prepared, seed uint64) *QuizScreen {
	ctx, cancel := context.WithCancel(context.Background())
	state, fx := session.Start(prep.Config(g.Privileged(), seed))
	return &QuizScreen{
		game:          g,
		userID:        userID,
		level:         prep.Level,
		state:         state,
		pending:       fx,
		started:       time.Now(),
		ctx:           ctx,
		cancel:        cancel,
		input:         components.NewTextInput("Type your answer...", 120),
		explainFailed: -1,
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	fx := s.pending
	s.pending = nil
	return tea.Batch(s.input.Init(), s.run(fx))
}

func (s *QuizScreen) Title() string {
	return s.level.Title
}

func (s *QuizScreen) HandlesEscape() bool { return true }

// State returns the current session state.
func (s *QuizScreen) State() session.State { return s.state }

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case actionMsg:
		return s, s.dispatch(msg.Action)

	case explainFailedMsg:
		slog.Debug("tutor explanation failed", "level_id", s.level.ID, "error", msg.Err)
		s.explainFailed = msg.Serial
		return s, nil

	case completedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, router.Replace(summary.New(s.summaryData(msg)))

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.answeringKind() == curriculum.KindFreeText {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// dispatch reduces one action and runs its effects. A new question
// resets the screen-local input.
func (s *QuizScreen) dispatch(a session.Action) tea.Cmd {
	prev := s.state.Serial
	next, fx := session.Reduce(s.state, a)
	s.state = next

	var cmds []tea.Cmd
	if next.Serial != prev {
		cmds = append(cmds, s.resetInput())
	}
	cmds = append(cmds, s.run(fx))
	return tea.Batch(cmds...)
}

func (s *QuizScreen) resetInput() tea.Cmd {
	s.input = components.NewTextInput("Type your answer...", 120)
	s.cursor = 0
	s.flipped = false
	return s.input.Init()
}

// run turns effects into commands. Delayed effects come back as actions;
// the reducer drops those that arrive for an earlier question.
func (s *QuizScreen) run(fx []session.Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range fx {
		switch e := e.(type) {
		case session.RevealClueAfter:
			cmds = append(cmds, after(e.Delay, session.ClueRevealed{Index: e.Index, Serial: e.Serial, Token: e.Token}))
		case session.HideHintAfter:
			cmds = append(cmds, after(e.Delay, session.HideHint{Serial: e.Serial}))
		case session.EndCelebrationAfter:
			cmds = append(cmds, after(e.Delay, session.CelebrationDone{}))
		case session.RequestExplanation:
			cmds = append(cmds, s.explain(e))
		case session.EmitResult:
			cmds = append(cmds, s.complete(e.Result))
		case session.ReportMalformed:
			slog.Warn("skipping malformed question", "level_id", s.level.ID, "question_id", e.QuestionID, "error", e.Err)
		}
	}
	return tea.Batch(cmds...)
}

func after(d time.Duration, a session.Action) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return actionMsg{Action: a} })
}

func (s *QuizScreen) explain(e session.RequestExplanation) tea.Cmd {
	if !s.game.CanExplain() {
		return nil
	}
	g, parent := s.game, s.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, explainTimeout)
		defer cancel()
		text, err := g.Explain(ctx, e.Question, e.Answer)
		if err != nil {
			return explainFailedMsg{Serial: e.Serial, Err: err}
		}
		return actionMsg{Action: session.ExplanationReady{Serial: e.Serial, Text: text}}
	}
}

func (s *QuizScreen) complete(res session.Result) tea.Cmd {
	g, userID := s.game, s.userID
	sum := session.BuildSummary(s.state)
	elapsed := time.Since(s.started)
	return func() tea.Msg {
		ctx := context.Background()
		before, err := g.Profile(ctx, userID)
		if err != nil {
			return completedMsg{Err: err}
		}
		after, err := g.Complete(ctx, userID, res, sum, elapsed)
		return completedMsg{Summary: sum, Before: before, After: after, Err: err}
	}
}

// abandon closes the session, records it and returns to the level map.
func (s *QuizScreen) abandon() tea.Cmd {
	s.dispatch(session.Close{})
	s.cancel()
	g, userID, levelID := s.game, s.userID, s.level.ID
	elapsed := time.Since(s.started)
	return func() tea.Msg {
		g.Abandon(context.Background(), userID, levelID, elapsed)
		return router.PopToRootMsg{}
	}
}

func (s *QuizScreen) summaryData(msg completedMsg) summary.Data {
	d := summary.Data{
		LevelTitle: s.level.Title,
		Summary:    msg.Summary,
		TotalXP:    msg.After.Stats.TotalXP,
		WeeklyXP:   msg.After.Stats.WeeklyXPAt(time.Now()),
	}
	if lp, ok := msg.After.Level(s.level.ID); ok {
		d.Mastery = lp.Mastery()
	}
	for _, l := range s.game.Registry().Levels() {
		if newlyUnlocked(msg.Before, msg.After, l.ID) {
			d.Unlocked = append(d.Unlocked, l.Title)
		}
	}
	return d
}

func newlyUnlocked(before, after progress.Profile, levelID string) bool {
	b, _ := before.Level(levelID)
	a, _ := after.Level(levelID)
	return a.Unlocked && !b.Unlocked
}

// answeringKind returns the current question's kind while input is
// being collected, or "".
func (s *QuizScreen) answeringKind() curriculum.Kind {
	if s.state.Stage != session.StageAnswering {
		return ""
	}
	q, ok := s.state.CurrentQuestion()
	if !ok {
		return ""
	}
	return q.Kind()
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave level"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.state.Stage {
	case session.StageConceptIntro, session.StagePhaseIntro:
		return []layout.KeyHint{{Key: "Enter", Description: "Begin"}, {Key: "Esc", Description: "Leave"}}
	case session.StageGraded:
		return []layout.KeyHint{{Key: "Enter", Description: "Next"}, {Key: "Esc", Description: "Leave"}}
	case session.StageCelebration:
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	case session.StageFinished:
		return []layout.KeyHint{{Key: "", Description: "Saving..."}}
	}

	switch s.answeringKind() {
	case curriculum.KindMultipleChoice:
		return []layout.KeyHint{{Key: "↑↓/1-9", Description: "Choose"}, {Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Leave"}}
	case curriculum.KindFreeText:
		return []layout.KeyHint{{Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Leave"}}
	case curriculum.KindFlashcard:
		if s.flipped {
			return []layout.KeyHint{{Key: "Y", Description: "Recalled"}, {Key: "N", Description: "Forgot"}}
		}
		return []layout.KeyHint{{Key: "Space", Description: "Flip"}, {Key: "Esc", Description: "Leave"}}
	case curriculum.KindOrdering:
		return []layout.KeyHint{{Key: "←→", Description: "Pick"}, {Key: "Space", Description: "Place"}, {Key: "1-9", Description: "Slot"}, {Key: "R", Description: "Reset"}, {Key: "Enter", Description: "Submit"}}
	case curriculum.KindDeduction:
		return []layout.KeyHint{{Key: "1-9", Description: "Run test"}, {Key: "↑↓", Description: "Suspect"}, {Key: "Enter", Description: "Accuse"}}
	}
	return nil
}
