package curriculum

import (
	"strings"
	"unicode"
)

// Phase is an ordered sub-unit of a level.
type Phase struct {
	ID         string
	Title      string
	Difficulty string

	// Story is optional narrative framing shown on the phase intro.
	Story string

	Questions []Question
}

// IsCase reports whether the phase is a self-contained detective case.
// Case phases keep their authored order and are never sampled.
func (p Phase) IsCase() bool {
	if hasCaseName(p.ID) || hasCaseName(p.Difficulty) || hasCaseName(p.Title) {
		return true
	}
	if len(p.Questions) == 0 {
		return false
	}
	for _, q := range p.Questions {
		if q.Kind() != KindDeduction {
			return false
		}
	}
	return true
}

// hasCaseName reports whether s leads with the word "case", as in
// "case-powder" or "Case 2: the blue flame".
func hasCaseName(s string) bool {
	if strings.Contains(s, "案件") {
		return true
	}
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return len(words) > 0 && words[0] == "case"
}

// Concept is introductory content shown once before a level's first
// phase.
type Concept struct {
	Title string
	Body  string
}

// Level is a unit of curriculum.
type Level struct {
	ID      string
	Title   string
	Order   int
	Concept *Concept
	Phases  []Phase
}

// QuestionCount returns the total number of questions across phases.
func (l Level) QuestionCount() int {
	n := 0
	for _, p := range l.Phases {
		n += len(p.Questions)
	}
	return n
}

// QuestionIDs returns every question ID in phase order.
func (l Level) QuestionIDs() []string {
	ids := make([]string, 0, l.QuestionCount())
	for _, p := range l.Phases {
		for _, q := range p.Questions {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// Question looks up a question by ID.
func (l Level) Question(id string) (Question, bool) {
	for _, p := range l.Phases {
		for _, q := range p.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// WithPhases returns a copy of the level using the given phases.
func (l Level) WithPhases(phases []Phase) Level {
	l.Phases = phases
	return l
}
