// Package content hydrates level question banks from a remote source,
// falling back to the locally bundled questions whenever the remote bank
// is unreachable, empty or invalid.
package content

import (
	"context"
	"fmt"
	"slices"

	"github.com/abhisek/chemquest/internal/curriculum"
)

// Source fetches the authoritative phases of a level.
type Source interface {
	FetchPhases(ctx context.Context, levelID string) ([]curriculum.Phase, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, levelID string) ([]curriculum.Phase, error)

// FetchPhases calls f.
func (f SourceFunc) FetchPhases(ctx context.Context, levelID string) ([]curriculum.Phase, error) {
	return f(ctx, levelID)
}

// BankDoc is one question in the remote bank. Phase metadata is repeated on
// every question of the phase.
type BankDoc struct {
	LevelID         string `bson:"level_id" json:"level_id"`
	PhaseID         string `bson:"phase_id" json:"phase_id"`
	PhaseTitle      string `bson:"phase_title" json:"phase_title"`
	PhaseDifficulty string `bson:"phase_difficulty,omitempty" json:"phase_difficulty,omitempty"`
	PhaseStory      string `bson:"phase_story,omitempty" json:"phase_story,omitempty"`
	PhaseOrder      int    `bson:"phase_order" json:"phase_order"`
	Order           int    `bson:"order" json:"order"`

	curriculum.QuestionDoc `bson:",inline"`
}

// GroupPhases assembles bank documents into phases ordered by phase order
// then question order. Documents that fail to convert are skipped and
// reported.
func GroupPhases(docs []BankDoc) ([]curriculum.Phase, []error) {
	sorted := slices.Clone(docs)
	slices.SortStableFunc(sorted, func(a, b BankDoc) int {
		if a.PhaseOrder != b.PhaseOrder {
			return a.PhaseOrder - b.PhaseOrder
		}
		return a.Order - b.Order
	})

	var (
		phases []curriculum.Phase
		errs   []error
		index  = map[string]int{}
	)
	for _, d := range sorted {
		q, err := d.ToQuestion()
		if err != nil {
			errs = append(errs, fmt.Errorf("phase %q: %w", d.PhaseID, err))
			continue
		}
		i, ok := index[d.PhaseID]
		if !ok {
			phases = append(phases, curriculum.Phase{
				ID:         d.PhaseID,
				Title:      d.PhaseTitle,
				Difficulty: d.PhaseDifficulty,
				Story:      d.PhaseStory,
			})
			i = len(phases) - 1
			index[d.PhaseID] = i
		}
		phases[i].Questions = append(phases[i].Questions, q)
	}
	return phases, errs
}
