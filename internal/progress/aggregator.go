package progress

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/session"
)

// ErrUnknownLevel is returned when a result names a level that is not in
// the curriculum.
var ErrUnknownLevel = errors.New("unknown level")

// Aggregator applies session results to profiles.
type Aggregator struct {
	// Curriculum orders levels for unlocking. Optional; without it no
	// level is unlocked and any level ID is accepted.
	Curriculum *curriculum.Registry

	Now   func() time.Time
	NewID func() string
}

// NewAggregator returns an Aggregator using the wall clock and random UUIDs.
func NewAggregator(reg *curriculum.Registry) *Aggregator {
	return &Aggregator{Curriculum: reg, Now: time.Now, NewID: uuid.NewString}
}

// Apply merges result into a copy of profile. The level is marked
// completed, its score only rises and its answered IDs only grow, so
// applying the same result twice is harmless apart from counting XP and
// mistakes twice.
func (a *Aggregator) Apply(profile Profile, levelID string, result session.Result) (Profile, error) {
	if result.LevelID != "" && result.LevelID != levelID {
		return profile, fmt.Errorf("apply result: result is for level %q, not %q", result.LevelID, levelID)
	}
	if a.Curriculum != nil {
		if _, ok := a.Curriculum.Level(levelID); !ok {
			return profile, fmt.Errorf("apply result: %w: %q", ErrUnknownLevel, levelID)
		}
	}

	now := a.now()
	out := profile.Clone()

	i := out.levelIndex(levelID)
	if i < 0 {
		out.Levels = append(out.Levels, LevelProgress{LevelID: levelID, Unlocked: true})
		i = len(out.Levels) - 1
	}
	lp := &out.Levels[i]
	firstCompletion := !lp.Completed
	lp.Completed = true
	lp.Unlocked = true
	lp.Score = max(lp.Score, result.XP)
	lp.AnsweredIDs = union(lp.AnsweredIDs, result.CorrectIDs)

	if firstCompletion && a.Curriculum != nil {
		if next, ok := a.Curriculum.Next(levelID); ok {
			out.unlock(next)
		}
	}

	if !sameISOWeek(out.Stats.WeekStart, now) {
		out.Stats.WeeklyXP = 0
		out.Stats.WeekStart = weekStart(now)
	}
	out.Stats.TotalXP += result.XP
	out.Stats.WeeklyXP += result.XP
	out.Stats.SessionsPlayed++

	for _, pair := range result.Mistakes {
		out.Mistakes = append(out.Mistakes, Mistake{
			ID:        a.newID(),
			LevelID:   levelID,
			Question:  pair.Question,
			Answer:    pair.Answer,
			CreatedAt: now,
		})
	}
	return out, nil
}

// Sync makes sure every curriculum level has a progress entry, unlocks the
// first level, and refreshes cached question totals. Answered IDs of
// removed questions are left in place.
func Sync(profile Profile, reg *curriculum.Registry) Profile {
	out := profile.Clone()
	for i, lvl := range reg.Levels() {
		j := out.levelIndex(lvl.ID)
		if j < 0 {
			out.Levels = append(out.Levels, LevelProgress{LevelID: lvl.ID})
			j = len(out.Levels) - 1
		}
		out.Levels[j].TotalQuestions = lvl.QuestionCount()
		if i == 0 {
			out.Levels[j].Unlocked = true
		}
	}
	return out
}

func (p *Profile) unlock(levelID string) {
	if i := p.levelIndex(levelID); i >= 0 {
		p.Levels[i].Unlocked = true
		return
	}
	p.Levels = append(p.Levels, LevelProgress{LevelID: levelID, Unlocked: true})
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *Aggregator) newID() string {
	if a.NewID != nil {
		return a.NewID()
	}
	return uuid.NewString()
}

// union returns the sorted, de-duplicated union of a and b.
func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}
