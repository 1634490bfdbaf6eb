package llm

import (
	"regexp"
	"strings"
)

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD price of one call's tokens.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1_000_000
}

// modelCosts covers the models reachable from the friendly names and the
// provider defaults. Prices from models.dev, 2026-02.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4-5": {3, 15},
	"gpt-4o-mini":       {0.15, 0.6},
	"gpt-4o":            {2.5, 10},
	"gemini-2.5-flash":  {0.3, 2.5},
	"gemini-2.5-pro":    {1.25, 10},
	// Experimental Gemini releases are free on OpenRouter.
	"gemini-2.0-flash-exp": {0, 0},
}

var dateSuffix = regexp.MustCompile(`-\d{8}$`)

// LookupCost finds pricing for a served model ID. OpenRouter vendor
// prefixes ("google/") and Anthropic snapshot dates are ignored, and
// friendly names resolve the same way the providers resolve them.
func LookupCost(model string) (ModelCost, bool) {
	id := model
	for _, m := range []map[string]string{anthropicModels, openaiModels, geminiModels} {
		if full, ok := m[id]; ok {
			id = full
			break
		}
	}
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	id = strings.TrimSuffix(id, ":free")
	id = dateSuffix.ReplaceAllString(id, "")
	c, ok := modelCosts[id]
	return c, ok
}
