// Package mistakes lets a learner retry questions they previously got
// wrong. A mistake leaves the book only on a correct retry; retries award
// no XP and never touch level mastery.
package mistakes

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/chemquest/internal/grading"
	"github.com/abhisek/chemquest/internal/progress"
)

// AckDelay is how long a correct retry is acknowledged before the caller
// resolves the mistake.
const AckDelay = 800 * time.Millisecond

// Outcome is the result of one retry.
type Outcome struct {
	Correct bool
	Answer  string
}

// Retry grades in against the mistake's question with the same rules as a
// quiz session. There is no attempt limit.
func Retry(m progress.Mistake, in grading.Input) (Outcome, error) {
	ok, err := grading.Grade(m.Question, in)
	if err != nil {
		return Outcome{}, fmt.Errorf("retry mistake %s: %w", m.ID, err)
	}
	return Outcome{Correct: ok, Answer: grading.AnswerText(m.Question, in)}, nil
}

// Resolve returns a copy of p without the mistake id. The second result
// reports whether it was present.
func Resolve(p progress.Profile, id string) (progress.Profile, bool) {
	i := slices.IndexFunc(p.Mistakes, func(m progress.Mistake) bool { return m.ID == id })
	if i < 0 {
		return p, false
	}
	out := p.Clone()
	out.Mistakes = slices.Delete(out.Mistakes, i, i+1)
	return out, true
}

// Find returns the mistake with the given id.
func Find(book []progress.Mistake, id string) (progress.Mistake, bool) {
	i := slices.IndexFunc(book, func(m progress.Mistake) bool { return m.ID == id })
	if i < 0 {
		return progress.Mistake{}, false
	}
	return book[i], true
}

// Filter returns the mistakes of one level. An empty levelID matches all.
func Filter(book []progress.Mistake, levelID string) []progress.Mistake {
	var out []progress.Mistake
	for _, m := range book {
		if levelID == "" || m.LevelID == levelID {
			out = append(out, m)
		}
	}
	return out
}

// Sorted returns the book newest first.
func Sorted(book []progress.Mistake) []progress.Mistake {
	out := slices.Clone(book)
	slices.SortStableFunc(out, func(a, b progress.Mistake) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Drill tracks one retry screen: how many tries so far, whether the last
// one failed (the caller shakes), and whether the mistake is solved.
type Drill struct {
	Mistake  progress.Mistake
	Attempts int
	Shake    bool
	Solved   bool
}

// NewDrill starts retrying m.
func NewDrill(m progress.Mistake) *Drill {
	return &Drill{Mistake: m}
}

// Submit grades in. Incomplete input is rejected without counting an
// attempt. Submitting after the drill is solved is a no-op.
func (d *Drill) Submit(in grading.Input) (Outcome, error) {
	if d.Solved {
		return Outcome{Correct: true}, nil
	}
	out, err := Retry(d.Mistake, in)
	if err != nil {
		return Outcome{}, err
	}
	d.Attempts++
	d.Shake = !out.Correct
	d.Solved = out.Correct
	return out, nil
}
