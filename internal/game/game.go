// Package game ties the curriculum, content hydration, profiles and
// persistence together behind the operations both front-ends use: start
// a level, finish it, work the mistake book.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/chemquest/internal/content"
	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/grading"
	"github.com/abhisek/chemquest/internal/mistakes"
	"github.com/abhisek/chemquest/internal/progress"
	"github.com/abhisek/chemquest/internal/session"
	"github.com/abhisek/chemquest/internal/store"
	"github.com/abhisek/chemquest/internal/tutor"
)

var (
	// ErrLocked is returned when a non-privileged player starts a level
	// that is not unlocked yet.
	ErrLocked = errors.New("level is locked")

	// ErrUnknownMistake is returned for a mistake ID not in the book.
	ErrUnknownMistake = errors.New("unknown mistake")

	// ErrNoTutor is returned by Explain when no LLM is configured.
	ErrNoTutor = errors.New("tutor not configured")
)

// Session event actions.
const (
	ActionStart    = "start"
	ActionComplete = "complete"
	ActionAbandon  = "abandon"
)

// Options configures a Game. Registry, Content and Profiles are required.
type Options struct {
	Registry *curriculum.Registry
	Content  *content.Service
	Profiles store.ProfileRepo

	// Events records session history. Optional.
	Events store.EventRepo

	// Explainer augments wrong answers. Optional.
	Explainer *tutor.Explainer

	Planner    session.Planner
	Aggregator *progress.Aggregator
	Saver      *progress.Saver
	Privileged bool
	Logger     *slog.Logger
}

// Game is safe for concurrent use.
type Game struct {
	reg        *curriculum.Registry
	content    *content.Service
	profiles   store.ProfileRepo
	events     store.EventRepo
	explainer  *tutor.Explainer
	aggregator *progress.Aggregator
	saver      *progress.Saver
	privileged bool
	logger     *slog.Logger

	planMu  sync.Mutex
	planner session.Planner

	mu    sync.Mutex
	cache map[string]progress.Profile

	// userMu serializes read-modify-write updates per user.
	userMu sync.Map
}

// New builds a Game. A Saver is started when none is given; Close stops it.
func New(opts Options) *Game {
	g := &Game{
		reg:        opts.Registry,
		content:    opts.Content,
		profiles:   opts.Profiles,
		events:     opts.Events,
		explainer:  opts.Explainer,
		aggregator: opts.Aggregator,
		saver:      opts.Saver,
		privileged: opts.Privileged,
		logger:     opts.Logger,
		planner:    opts.Planner,
		cache:      make(map[string]progress.Profile),
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.content == nil {
		g.content = content.NewService(nil, 0, g.logger)
	}
	if g.aggregator == nil {
		g.aggregator = progress.NewAggregator(g.reg)
	}
	if g.planner == nil {
		g.planner = session.NewPlanner()
	}
	if g.saver == nil {
		g.saver = progress.NewSaver(g.profiles, progress.WithLogger(g.logger))
	}
	return g
}

// Registry returns the curriculum.
func (g *Game) Registry() *curriculum.Registry { return g.reg }

// Privileged reports whether administrative shortcuts are enabled.
func (g *Game) Privileged() bool { return g.privileged }

// Remote reports whether level banks come from a remote source.
func (g *Game) Remote() bool { return g.content.Remote() }

// CanExplain reports whether wrong answers can be augmented.
func (g *Game) CanExplain() bool { return g.explainer != nil }

// Profile returns the most recent known profile for userID. The first
// call per user reads the store; later calls see in-memory updates even
// before they are written.
func (g *Game) Profile(ctx context.Context, userID string) (progress.Profile, error) {
	g.mu.Lock()
	p, ok := g.cache[userID]
	g.mu.Unlock()
	if ok {
		return p.Clone(), nil
	}

	p, dropped, err := progress.Load(ctx, g.profiles, userID, g.reg)
	if err != nil {
		return progress.Profile{}, err
	}
	for _, e := range dropped {
		g.logger.Warn("dropping unreadable mistake", "user_id", userID, "error", e)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if cached, ok := g.cache[userID]; ok {
		return cached.Clone(), nil
	}
	g.cache[userID] = p
	return p.Clone(), nil
}

// Prepared is a level ready to play.
type Prepared struct {
	Level      curriculum.Level
	StartPhase int
	Offline    bool
}

// Config returns the session configuration for p.
func (p Prepared) Config(privileged bool, seed uint64) session.Config {
	return session.Config{Level: p.Level, StartPhase: p.StartPhase, Privileged: privileged, Seed: seed}
}

// Prepare hydrates levelID's bank and selects this session's questions.
// Only ctx cancellation can interrupt hydration; remote failures fall
// back to the bundled bank.
func (g *Game) Prepare(ctx context.Context, userID, levelID string, startPhase int) (Prepared, error) {
	level, ok := g.reg.Level(levelID)
	if !ok {
		return Prepared{}, fmt.Errorf("%w: %s", progress.ErrUnknownLevel, levelID)
	}
	p, err := g.Profile(ctx, userID)
	if err != nil {
		return Prepared{}, err
	}
	if lp, _ := p.Level(levelID); !lp.Unlocked && !g.privileged {
		return Prepared{}, fmt.Errorf("%w: %s", ErrLocked, levelID)
	}

	h := g.content.Hydrate(ctx, level)
	if err := ctx.Err(); err != nil {
		return Prepared{}, err
	}

	g.planMu.Lock()
	phases := g.planner.Plan(h.Level, p.AnsweredSet(levelID), g.privileged)
	g.planMu.Unlock()

	if startPhase < 0 || startPhase >= len(phases) {
		startPhase = 0
	}
	g.record(ctx, store.SessionEventData{UserID: userID, LevelID: levelID, Action: ActionStart})
	return Prepared{Level: h.Level.WithPhases(phases), StartPhase: startPhase, Offline: h.Offline}, nil
}

// Complete folds a finished session into the user's profile and schedules
// it for saving. It does not wait for the write.
// Results for a level the player has not unlocked are refused unless the
// game is privileged.
func (g *Game) Complete(ctx context.Context, userID string, res session.Result, sum session.Summary, elapsed time.Duration) (progress.Profile, error) {
	unlock := g.lockUser(userID)
	defer unlock()

	p, err := g.Profile(ctx, userID)
	if err != nil {
		return progress.Profile{}, err
	}
	if lp, ok := p.Level(res.LevelID); ok && !lp.Unlocked && !g.privileged {
		return progress.Profile{}, fmt.Errorf("%w: %s", ErrLocked, res.LevelID)
	}
	updated, err := g.aggregator.Apply(p, res.LevelID, res)
	if err != nil {
		return progress.Profile{}, err
	}
	g.commit(updated)

	g.record(ctx, store.SessionEventData{
		UserID:       userID,
		LevelID:      res.LevelID,
		Action:       ActionComplete,
		XP:           res.XP,
		Questions:    sum.Total,
		FirstTry:     sum.FirstTry,
		Mistakes:     len(res.Mistakes),
		DurationSecs: int(elapsed.Seconds()),
	})
	return updated.Clone(), nil
}

// Abandon records a session closed before completion. The profile is not
// touched.
func (g *Game) Abandon(ctx context.Context, userID, levelID string, elapsed time.Duration) {
	g.record(ctx, store.SessionEventData{
		UserID:       userID,
		LevelID:      levelID,
		Action:       ActionAbandon,
		DurationSecs: int(elapsed.Seconds()),
	})
}

// History returns the user's recent session events, newest first. It is
// empty when no event repository is configured.
func (g *Game) History(ctx context.Context, userID string, limit int) ([]store.SessionEvent, error) {
	if g.events == nil {
		return nil, nil
	}
	evs, err := g.events.QuerySessionEvents(ctx, store.QueryOpts{UserID: userID, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("session history: %w", err)
	}
	return evs, nil
}

// Mistakes returns the user's mistake book, newest first. An empty
// levelID returns every level.
func (g *Game) Mistakes(ctx context.Context, userID, levelID string) ([]progress.Mistake, error) {
	p, err := g.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	book := p.Mistakes
	if levelID != "" {
		book = mistakes.Filter(book, levelID)
	}
	return mistakes.Sorted(book), nil
}

// RetryMistake grades another attempt at a recorded mistake. The entry is
// kept; call ResolveMistake after acknowledging a correct answer.
func (g *Game) RetryMistake(ctx context.Context, userID, mistakeID string, in grading.Input) (mistakes.Outcome, error) {
	p, err := g.Profile(ctx, userID)
	if err != nil {
		return mistakes.Outcome{}, err
	}
	m, ok := mistakes.Find(p.Mistakes, mistakeID)
	if !ok {
		return mistakes.Outcome{}, fmt.Errorf("%w: %s", ErrUnknownMistake, mistakeID)
	}
	return mistakes.Retry(m, in)
}

// ResolveMistake removes a mistake from the book and schedules a save.
func (g *Game) ResolveMistake(ctx context.Context, userID, mistakeID string) (progress.Profile, error) {
	unlock := g.lockUser(userID)
	defer unlock()

	p, err := g.Profile(ctx, userID)
	if err != nil {
		return progress.Profile{}, err
	}
	updated, ok := mistakes.Resolve(p, mistakeID)
	if !ok {
		return progress.Profile{}, fmt.Errorf("%w: %s", ErrUnknownMistake, mistakeID)
	}
	g.commit(updated)
	return updated.Clone(), nil
}

// Explain asks the tutor why answer is wrong for q.
func (g *Game) Explain(ctx context.Context, q curriculum.Question, answer string) (string, error) {
	if g.explainer == nil {
		return "", ErrNoTutor
	}
	return g.explainer.Explain(ctx, q, answer)
}

// Reset deletes the user's stored profile.
func (g *Game) Reset(ctx context.Context, userID string) error {
	unlock := g.lockUser(userID)
	defer unlock()

	if err := g.saver.Flush(ctx); err != nil {
		g.logger.Warn("flush before reset failed", "user_id", userID, "error", err)
	}
	if err := g.profiles.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	g.mu.Lock()
	delete(g.cache, userID)
	g.mu.Unlock()
	return nil
}

// Flush writes pending profiles now.
func (g *Game) Flush(ctx context.Context) error {
	return g.saver.Flush(ctx)
}

// Close flushes pending profiles and stops the saver.
func (g *Game) Close(ctx context.Context) error {
	return g.saver.Close(ctx)
}

func (g *Game) lockUser(userID string) func() {
	v, _ := g.userMu.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (g *Game) commit(p progress.Profile) {
	g.mu.Lock()
	g.cache[p.UserID] = p.Clone()
	g.mu.Unlock()
	g.saver.Schedule(p)
}

func (g *Game) record(ctx context.Context, ev store.SessionEventData) {
	if g.events == nil {
		return
	}
	if err := g.events.AppendSessionEvent(context.WithoutCancel(ctx), ev); err != nil {
		g.logger.Warn("session event not recorded", "user_id", ev.UserID, "action", ev.Action, "error", err)
	}
}
