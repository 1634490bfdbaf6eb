package session

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/abhisek/chemquest/internal/curriculum"
)

// Planner turns a level's full bank into the phases a learner faces this
// session.
type Planner interface {
	Plan(level curriculum.Level, answered map[string]bool, privileged bool) []curriculum.Phase
}

// DefaultPlanner samples unseen questions first using its random source.
type DefaultPlanner struct {
	Rand *rand.Rand
}

// NewPlanner creates a planner seeded from the clock.
func NewPlanner() *DefaultPlanner {
	now := uint64(time.Now().UnixNano())
	return &DefaultPlanner{Rand: rand.New(rand.NewPCG(now, now>>32))}
}

// NewSeededPlanner creates a planner with a deterministic source.
func NewSeededPlanner(seed uint64) *DefaultPlanner {
	return &DefaultPlanner{Rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Plan implements Planner.
func (p *DefaultPlanner) Plan(level curriculum.Level, answered map[string]bool, privileged bool) []curriculum.Phase {
	return SelectRuntimePhases(level, answered, privileged, p.Rand)
}

// SelectRuntimePhases builds the runtime phase list for a session.
//
// Privileged sessions and case phases see the authored bank unchanged.
// Every other phase is sampled: unseen questions first, backfilled from
// seen ones up to QuestionsPerPhase, then shuffled once more so seen and
// unseen questions are interleaved. Within a phase, lower tiers come
// first; questions of one tier stay shuffled. The level is not modified.
func SelectRuntimePhases(level curriculum.Level, answered map[string]bool, privileged bool, rng *rand.Rand) []curriculum.Phase {
	out := make([]curriculum.Phase, len(level.Phases))
	for i, phase := range level.Phases {
		out[i] = phase
		out[i].Questions = append([]curriculum.Question(nil), phase.Questions...)
		if privileged || phase.IsCase() {
			continue
		}
		out[i].Questions = samplePhase(phase.Questions, answered, rng)
	}
	return out
}

func samplePhase(questions []curriculum.Question, answered map[string]bool, rng *rand.Rand) []curriculum.Question {
	var unseen, seen []curriculum.Question
	for _, q := range questions {
		if answered[q.ID] {
			seen = append(seen, q)
		} else {
			unseen = append(unseen, q)
		}
	}
	shuffle(rng, unseen)
	shuffle(rng, seen)

	picked := make([]curriculum.Question, 0, QuestionsPerPhase)
	picked = append(picked, unseen[:min(len(unseen), QuestionsPerPhase)]...)
	if need := QuestionsPerPhase - len(picked); need > 0 {
		picked = append(picked, seen[:min(len(seen), need)]...)
	}
	shuffle(rng, picked)
	slices.SortStableFunc(picked, func(a, b curriculum.Question) int {
		return cmp.Compare(a.Tier, b.Tier)
	})
	return picked
}

func shuffle(rng *rand.Rand, qs []curriculum.Question) {
	rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}
