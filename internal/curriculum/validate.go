package curriculum

import (
	"fmt"
	"strings"
)

// Issue is a single content defect.
type Issue struct {
	Field   string
	Message string
}

// ValidationError lists every defect found in a piece of content.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "content validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", is.Field, is.Message))
	}
	return "content validation failed:\n  " + strings.Join(parts, "\n  ")
}

type issues []Issue

func (is *issues) add(field, format string, args ...any) {
	*is = append(*is, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (is issues) err() error {
	if len(is) == 0 {
		return nil
	}
	return &ValidationError{Issues: is}
}

// ValidateQuestion checks that exactly one correct answer can be resolved
// for the question's kind.
func ValidateQuestion(q Question) error {
	var is issues
	validateQuestion(&is, "question", q)
	return is.err()
}

// ValidateLevel checks every question in the level plus level-wide
// constraints such as unique question IDs.
func ValidateLevel(l Level) error {
	var is issues
	if strings.TrimSpace(l.ID) == "" {
		is.add("level", "id is required")
	}
	prefix := fmt.Sprintf("level %q", l.ID)
	if len(l.Phases) == 0 {
		is.add(prefix, "has no phases")
	}

	seen := make(map[string]bool)
	for pi, p := range l.Phases {
		pfield := fmt.Sprintf("%s phase %d", prefix, pi)
		if len(p.Questions) == 0 {
			is.add(pfield, "has no questions")
		}
		for _, q := range p.Questions {
			if q.ID != "" && seen[q.ID] {
				is.add(pfield, "duplicate question id %q", q.ID)
			}
			seen[q.ID] = true
			validateQuestion(&is, fmt.Sprintf("%s question %q", pfield, q.ID), q)
		}
	}
	return is.err()
}

func validateQuestion(is *issues, field string, q Question) {
	if strings.TrimSpace(q.ID) == "" {
		is.add(field, "id is required")
	}

	switch p := q.Payload.(type) {
	case MultipleChoice:
		if len(p.Options) < 2 {
			is.add(field, "multiple choice needs at least 2 options, got %d", len(p.Options))
		}
		if p.Correct < 0 || p.Correct >= len(p.Options) {
			is.add(field, "correct option %d out of range", p.Correct)
		}
	case FreeText:
		if strings.TrimSpace(p.Answer) == "" {
			is.add(field, "free text answer is empty")
		}
	case Flashcard:
		if strings.TrimSpace(p.Back) == "" {
			is.add(field, "flashcard back is empty")
		}
	case Ordering:
		validateOrdering(is, field, p)
	case Deduction:
		if len(p.Clues) == 0 {
			is.add(field, "deduction has no clues")
		}
		if len(p.Suspects) < 2 {
			is.add(field, "deduction needs at least 2 suspects, got %d", len(p.Suspects))
		}
		if p.Correct < 0 || p.Correct >= len(p.Suspects) {
			is.add(field, "correct suspect %d out of range", p.Correct)
		}
	case nil:
		is.add(field, "missing answer payload")
	default:
		is.add(field, "unknown payload %T", p)
	}
}

func validateOrdering(is *issues, field string, p Ordering) {
	tpl, err := ParseTemplate(p.Template)
	if err != nil {
		is.add(field, "%v", err)
		return
	}
	if tpl.Slots > len(p.Items) {
		is.add(field, "template has %d slots but %d items", tpl.Slots, len(p.Items))
	}
	if tpl.Slots != len(p.Correct) {
		is.add(field, "template has %d slots but correct sequence has %d entries", tpl.Slots, len(p.Correct))
	}

	ids := make(map[string]bool, len(p.Items))
	pool := make(map[string]int, len(p.Items))
	for _, it := range p.Items {
		if ids[it.ID] {
			is.add(field, "duplicate item id %q", it.ID)
		}
		ids[it.ID] = true
		pool[it.Content]++
	}
	for _, c := range p.Correct {
		if pool[c] == 0 {
			is.add(field, "correct entry %q cannot be built from items", c)
			continue
		}
		pool[c]--
	}
}
