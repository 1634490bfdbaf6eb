package llm

import "context"

// Purpose names the feature that issued a request. It is stored with every
// recorded LLM event and drives the per-purpose usage report.
type Purpose string

const (
	PurposeExplanation Purpose = "explanation"
	PurposeTutorChat   Purpose = "tutor-chat"
	PurposeUnknown     Purpose = "unknown"
)

// Purposes lists the purposes the game issues, in report order.
func Purposes() []Purpose {
	return []Purpose{PurposeExplanation, PurposeTutorChat}
}

// Label is the human-readable name shown in reports.
func (p Purpose) Label() string {
	switch p {
	case PurposeExplanation:
		return "Wrong-answer explanations"
	case PurposeTutorChat:
		return "Tutor chat"
	}
	return string(p)
}

type purposeKey struct{}

// WithPurpose tags ctx so that decorators know which feature is calling.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the purpose attached to ctx, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok && p != "" {
		return p
	}
	return PurposeUnknown
}
