package grading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/chemquest/internal/curriculum"
)

var (
	// ErrUngradable means the question's content is malformed.
	ErrUngradable = errors.New("question cannot be graded")

	// ErrIncomplete means required input is missing.
	ErrIncomplete = errors.New("answer is incomplete")
)

// NoChoice marks an Input with no option or suspect selected.
const NoChoice = -1

// Input is a learner's response. Only the fields of the question's kind
// are read.
type Input struct {
	// Choice is the selected option (multiple choice) or suspect
	// (deduction).
	Choice int

	// Text is the typed free-text answer.
	Text string

	// Sequence holds ordering slot contents in slot order. An empty
	// string is an unfilled slot.
	Sequence []string

	// Recalled is the flashcard self-assessment.
	Recalled bool
}

// Blank returns an Input with nothing selected.
func Blank() Input { return Input{Choice: NoChoice} }

// Choose returns an Input selecting option or suspect i.
func Choose(i int) Input { return Input{Choice: i} }

// Type returns a free-text Input.
func Type(s string) Input { return Input{Choice: NoChoice, Text: s} }

// Place returns an ordering Input.
func Place(seq ...string) Input { return Input{Choice: NoChoice, Sequence: seq} }

// Recall returns a flashcard Input.
func Recall(recalled bool) Input { return Input{Choice: NoChoice, Recalled: recalled} }

// Complete reports whether in carries everything needed to grade q.
// Callers use it to keep submission disabled.
func Complete(q curriculum.Question, in Input) bool {
	switch p := q.Payload.(type) {
	case curriculum.MultipleChoice:
		return in.Choice >= 0 && in.Choice < len(p.Options)
	case curriculum.Deduction:
		return in.Choice >= 0 && in.Choice < len(p.Suspects)
	case curriculum.FreeText:
		return strings.TrimSpace(in.Text) != ""
	case curriculum.Ordering:
		if len(in.Sequence) != len(p.Correct) {
			return false
		}
		for _, s := range in.Sequence {
			if s == "" {
				return false
			}
		}
		return true
	case curriculum.Flashcard:
		return true
	default:
		return false
	}
}

// Grade reports whether in answers q correctly. For flashcards the
// result is the learner's own recall assessment.
func Grade(q curriculum.Question, in Input) (bool, error) {
	if err := curriculum.ValidateQuestion(q); err != nil {
		return false, fmt.Errorf("%w: %v", ErrUngradable, err)
	}
	if !Complete(q, in) {
		return false, ErrIncomplete
	}

	switch p := q.Payload.(type) {
	case curriculum.MultipleChoice:
		return in.Choice == p.Correct, nil
	case curriculum.Deduction:
		return in.Choice == p.Correct, nil
	case curriculum.FreeText:
		return matchFreeText(in.Text, p.Answer), nil
	case curriculum.Ordering:
		return EquivalentSequences(in.Sequence, p.Correct, p.Template), nil
	case curriculum.Flashcard:
		return in.Recalled, nil
	default:
		return false, fmt.Errorf("%w: unknown payload %T", ErrUngradable, p)
	}
}

func matchFreeText(text, canonical string) bool {
	got := StripTrailingDescriptor(Normalize(text))
	if got == "" {
		return false
	}
	for _, alt := range SplitAlternates(canonical) {
		if got == StripTrailingDescriptor(Normalize(alt)) {
			return true
		}
	}
	return false
}

// AnswerText renders the learner's answer for a mistake record.
func AnswerText(q curriculum.Question, in Input) string {
	switch p := q.Payload.(type) {
	case curriculum.MultipleChoice:
		return pick(p.Options, in.Choice)
	case curriculum.Deduction:
		return pick(p.Suspects, in.Choice)
	case curriculum.FreeText:
		return strings.TrimSpace(in.Text)
	case curriculum.Ordering:
		return renderSequence(p.Template, in.Sequence)
	case curriculum.Flashcard:
		if in.Recalled {
			return "recalled"
		}
		return "not recalled"
	default:
		return ""
	}
}

// CanonicalText renders the correct answer for display and prompts.
func CanonicalText(q curriculum.Question) string {
	switch p := q.Payload.(type) {
	case curriculum.MultipleChoice:
		return pick(p.Options, p.Correct)
	case curriculum.Deduction:
		return pick(p.Suspects, p.Correct)
	case curriculum.FreeText:
		alts := SplitAlternates(p.Answer)
		if len(alts) == 0 {
			return p.Answer
		}
		return strings.Join(alts, " / ")
	case curriculum.Ordering:
		return renderSequence(p.Template, p.Correct)
	case curriculum.Flashcard:
		return p.Back
	default:
		return ""
	}
}

func pick(opts []string, i int) string {
	if i < 0 || i >= len(opts) {
		return ""
	}
	return opts[i]
}

func renderSequence(template string, seq []string) string {
	tpl, err := curriculum.ParseTemplate(template)
	if err != nil {
		return strings.Join(seq, " ")
	}
	return tpl.Render(func(i int) string {
		if i >= len(seq) || seq[i] == "" {
			return "__"
		}
		return seq[i]
	})
}
