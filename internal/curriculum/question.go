package curriculum

// Kind identifies how a question is answered.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindFreeText       Kind = "free_text"
	KindFlashcard      Kind = "flashcard"
	KindOrdering       Kind = "ordering"
	KindDeduction      Kind = "deduction"
)

// AllKinds returns every question kind in display order.
func AllKinds() []Kind {
	return []Kind{
		KindMultipleChoice,
		KindFreeText,
		KindFlashcard,
		KindOrdering,
		KindDeduction,
	}
}

// DisplayName returns a human-readable label for the kind.
func (k Kind) DisplayName() string {
	switch k {
	case KindMultipleChoice:
		return "Multiple choice"
	case KindFreeText:
		return "Free text"
	case KindFlashcard:
		return "Flashcard"
	case KindOrdering:
		return "Equation builder"
	case KindDeduction:
		return "Detective case"
	default:
		return string(k)
	}
}

// Question is one gradable unit of a level's bank.
type Question struct {
	// ID is stable and unique within a level.
	ID string

	// Prompt may embed lightweight chemical notation such as "H_2O" or
	// "$SO_4^{2-}$". The grader normalizes it away.
	Prompt string

	// Explanation is the authored worked answer shown after grading.
	Explanation string

	// Hint is shown automatically after a first wrong attempt. Optional.
	Hint string

	// Tier orders sampled questions within a phase, lowest first.
	Tier int

	// Payload holds the kind-specific answer data. Exactly one of the
	// payload types below.
	Payload Payload
}

// Kind returns the question's kind, derived from its payload.
func (q Question) Kind() Kind {
	if q.Payload == nil {
		return ""
	}
	return q.Payload.Kind()
}

// Payload is the closed set of per-kind answer data. The unexported
// method keeps the set sealed to this package.
type Payload interface {
	Kind() Kind
	isPayload()
}

// MultipleChoice is answered by picking one option.
type MultipleChoice struct {
	Options []string
	Correct int
}

// FreeText is answered by typing. Answer may hold several accepted
// alternates separated by "/", "|" or ";".
type FreeText struct {
	Answer string
}

// Flashcard is self-assessed: the learner flips the card and reports
// whether they recalled the back.
type Flashcard struct {
	Back string
}

// Item is a draggable piece of an ordering question.
type Item struct {
	ID      string
	Content string
}

// Ordering is answered by placing items into the slots of Template
// ("{0} + {1} -> {2}"). Correct is the canonical content sequence in
// slot order.
type Ordering struct {
	Items    []Item
	Template string
	Correct  []string
}

// Clue is a revealable experiment in a deduction question.
type Clue struct {
	Stimulus string
	Result   string
}

// Deduction is a detective question: clues are investigated freely and
// only the suspect choice is graded.
type Deduction struct {
	Clues    []Clue
	Suspects []string
	Correct  int
}

func (MultipleChoice) Kind() Kind { return KindMultipleChoice }
func (FreeText) Kind() Kind       { return KindFreeText }
func (Flashcard) Kind() Kind      { return KindFlashcard }
func (Ordering) Kind() Kind       { return KindOrdering }
func (Deduction) Kind() Kind      { return KindDeduction }

func (MultipleChoice) isPayload() {}
func (FreeText) isPayload()       {}
func (Flashcard) isPayload()      {}
func (Ordering) isPayload()       {}
func (Deduction) isPayload()      {}

// ItemByID returns the item with the given ID.
func (o Ordering) ItemByID(id string) (Item, bool) {
	for _, it := range o.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
