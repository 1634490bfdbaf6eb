package llm

import (
	"slices"

	"github.com/abhisek/chemquest/internal/store"
)

// PurposeSpend totals recorded usage and estimated cost for one purpose.
type PurposeSpend struct {
	Purpose      Purpose
	Calls        int
	InputTokens  int
	OutputTokens int
	CostUSD      float64

	// Unpriced lists models served for this purpose that have no pricing;
	// their tokens are counted but not costed.
	Unpriced []string
}

// Spend folds per-model usage rows into one entry per purpose. The game's
// own purposes come first, in Purposes order, even when unused; anything
// else recorded follows alphabetically.
func Spend(rows []store.ModelUsage) []PurposeSpend {
	byPurpose := make(map[Purpose]*PurposeSpend)
	var out []PurposeSpend
	for _, p := range Purposes() {
		byPurpose[p] = &PurposeSpend{Purpose: p}
	}
	var extra []Purpose
	for _, r := range rows {
		p := Purpose(r.Purpose)
		s, ok := byPurpose[p]
		if !ok {
			s = &PurposeSpend{Purpose: p}
			byPurpose[p] = s
			extra = append(extra, p)
		}
		s.Calls += r.Calls
		s.InputTokens += r.InputTokens
		s.OutputTokens += r.OutputTokens
		if c, ok := LookupCost(r.Model); ok {
			s.CostUSD += c.Cost(r.InputTokens, r.OutputTokens)
		} else if !slices.Contains(s.Unpriced, r.Model) {
			s.Unpriced = append(s.Unpriced, r.Model)
		}
	}
	slices.Sort(extra)
	for _, p := range append(Purposes(), extra...) {
		out = append(out, *byPurpose[p])
	}
	return out
}
