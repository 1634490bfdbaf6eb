// Package progress merges finished quiz sessions into the learner's
// persisted profile and writes that profile back in the background.
package progress

import (
	"slices"
	"time"

	"github.com/abhisek/chemquest/internal/curriculum"
)

// Profile is everything persisted for one learner.
type Profile struct {
	UserID   string
	Stats    Stats
	Levels   []LevelProgress
	Mistakes []Mistake
}

// Stats holds the learner's XP counters.
type Stats struct {
	TotalXP        int
	WeeklyXP       int
	WeekStart      time.Time
	SessionsPlayed int
}

// WeeklyXPAt returns the weekly XP as seen at now: zero once now falls in
// a later ISO week than WeekStart.
func (s Stats) WeeklyXPAt(now time.Time) int {
	if !sameISOWeek(s.WeekStart, now) {
		return 0
	}
	return s.WeeklyXP
}

// LevelProgress is the mutable part of a level.
type LevelProgress struct {
	LevelID        string
	Unlocked       bool
	Completed      bool
	Score          int
	AnsweredIDs    []string
	TotalQuestions int
}

// Mastery returns answered/total clamped to [0, 1].
func (lp LevelProgress) Mastery() float64 {
	if lp.TotalQuestions <= 0 {
		return 0
	}
	m := float64(len(lp.AnsweredIDs)) / float64(lp.TotalQuestions)
	return min(m, 1)
}

// Answered reports whether id was answered correctly on a first attempt
// in some earlier session.
func (lp LevelProgress) Answered(id string) bool {
	_, found := slices.BinarySearch(lp.AnsweredIDs, id)
	return found
}

// Mistake is a question the learner got wrong twice, kept until a correct
// retry.
type Mistake struct {
	ID        string
	LevelID   string
	Question  curriculum.Question
	Answer    string
	CreatedAt time.Time
}

// New returns an empty profile for userID.
func New(userID string) Profile {
	return Profile{UserID: userID}
}

// Level returns the progress for levelID.
func (p Profile) Level(levelID string) (LevelProgress, bool) {
	i := p.levelIndex(levelID)
	if i < 0 {
		return LevelProgress{}, false
	}
	return p.Levels[i], true
}

// AnsweredSet returns the answered IDs of levelID as a set, for the
// question selector.
func (p Profile) AnsweredSet(levelID string) map[string]bool {
	lp, _ := p.Level(levelID)
	set := make(map[string]bool, len(lp.AnsweredIDs))
	for _, id := range lp.AnsweredIDs {
		set[id] = true
	}
	return set
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	out := p
	out.Levels = make([]LevelProgress, len(p.Levels))
	for i, lp := range p.Levels {
		lp.AnsweredIDs = slices.Clone(lp.AnsweredIDs)
		out.Levels[i] = lp
	}
	out.Mistakes = slices.Clone(p.Mistakes)
	return out
}

func (p Profile) levelIndex(levelID string) int {
	return slices.IndexFunc(p.Levels, func(lp LevelProgress) bool {
		return lp.LevelID == levelID
	})
}

func sameISOWeek(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

// weekStart returns Monday 00:00 of t's ISO week in t's location.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}
