package session

import (
	"math/rand/v2"
	"slices"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/grading"
)

// Stage is the coarse position of a session in its lifecycle.
type Stage int

const (
	StageConceptIntro Stage = iota // Level concept shown before the first phase
	StagePhaseIntro                // Phase story shown before its first question
	StageAnswering                 // Collecting input for the current question
	StageGraded                    // Showing the verdict and explanation
	StageCelebration               // Level complete, result not yet emitted
	StageFinished                  // Result emitted; terminal
	StageAbandoned                 // Closed early, no result; terminal
)

func (s Stage) String() string {
	switch s {
	case StageConceptIntro:
		return "concept-intro"
	case StagePhaseIntro:
		return "phase-intro"
	case StageAnswering:
		return "answering"
	case StageGraded:
		return "graded"
	case StageCelebration:
		return "celebration"
	case StageFinished:
		return "finished"
	case StageAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s Stage) Terminal() bool {
	return s == StageFinished || s == StageAbandoned
}

// ClueStatus is the visibility of a deduction clue.
type ClueStatus int

const (
	ClueHidden ClueStatus = iota
	ClueRunning
	ClueShown
)

// ClueState tracks one clue. Token identifies the reveal timer that may
// complete it.
type ClueState struct {
	Status ClueStatus
	Token  int
}

// Outcome records how a question ended.
type Outcome int

const (
	OutcomeFirstTry Outcome = iota
	OutcomeSecondTry
	OutcomeMissed
	OutcomeRecalled
	OutcomeForgotten
	OutcomeSkipped
)

// Interaction is the transient per-question input. It is rebuilt from
// scratch whenever the question or phase changes.
type Interaction struct {
	Choice int
	Text   string

	// Slots holds the item ID placed in each ordering slot ("" if empty).
	Slots []string
	// Bank holds unplaced item IDs in display order.
	Bank       []string
	ActiveSlot int
	reshuffles int

	Clues     []ClueState
	clueTicks int

	Attempts    int
	HintVisible bool
	Shake       bool

	// Set once graded.
	Correct       bool
	AwardedXP     int
	AIExplanation string
}

// MistakePair is a question answered wrongly this session, with the
// learner's final answer.
type MistakePair struct {
	Question curriculum.Question
	Answer   string
}

// Result is the atomic outcome of a completed session.
type Result struct {
	LevelID    string
	XP         int
	Mistakes   []MistakePair
	CorrectIDs []string
}

// State is the complete session state. It is a value: Reduce never
// modifies the State it is given.
type State struct {
	Stage Stage

	LevelID string
	Concept *curriculum.Concept
	Phases  []curriculum.Phase

	PhaseIndex    int
	QuestionIndex int

	Privileged bool

	// Serial identifies the current question. Delayed effects carry it
	// so late timers and responses for earlier questions are dropped.
	Serial int

	Input Interaction

	XP         int
	Mistakes   []MistakePair
	CorrectIDs []string
	Outcomes   []Outcome

	seed uint64
}

// CurrentPhase returns the active phase.
func (s State) CurrentPhase() (curriculum.Phase, bool) {
	if s.PhaseIndex < 0 || s.PhaseIndex >= len(s.Phases) {
		return curriculum.Phase{}, false
	}
	return s.Phases[s.PhaseIndex], true
}

// CurrentQuestion returns the active question.
func (s State) CurrentQuestion() (curriculum.Question, bool) {
	p, ok := s.CurrentPhase()
	if !ok || s.QuestionIndex < 0 || s.QuestionIndex >= len(p.Questions) {
		return curriculum.Question{}, false
	}
	return p.Questions[s.QuestionIndex], true
}

// TotalQuestions returns the number of runtime questions in the session.
func (s State) TotalQuestions() int {
	n := 0
	for _, p := range s.Phases {
		n += len(p.Questions)
	}
	return n
}

// Position returns the 1-based number of the current question across
// all phases.
func (s State) Position() int {
	n := 0
	for i := 0; i < s.PhaseIndex && i < len(s.Phases); i++ {
		n += len(s.Phases[i].Questions)
	}
	return n + s.QuestionIndex + 1
}

// Result returns the session result once the session has finished.
func (s State) Result() (Result, bool) {
	if s.Stage != StageFinished {
		return Result{}, false
	}
	return s.result(), true
}

func (s State) result() Result {
	return Result{
		LevelID:    s.LevelID,
		XP:         s.XP,
		Mistakes:   slices.Clone(s.Mistakes),
		CorrectIDs: slices.Clone(s.CorrectIDs),
	}
}

// GradingInput converts the interaction into grader input for q.
func (s State) GradingInput(q curriculum.Question) grading.Input {
	in := grading.Input{Choice: s.Input.Choice, Text: s.Input.Text}
	if p, ok := q.Payload.(curriculum.Ordering); ok {
		in.Sequence = make([]string, len(s.Input.Slots))
		for i, id := range s.Input.Slots {
			if it, ok := p.ItemByID(id); ok {
				in.Sequence[i] = it.Content
			}
		}
	}
	return in
}

// CanSubmit reports whether submission should be enabled.
func (s State) CanSubmit() bool {
	if s.Stage != StageAnswering {
		return false
	}
	q, ok := s.CurrentQuestion()
	if !ok || q.Kind() == curriculum.KindFlashcard {
		return false
	}
	return grading.Complete(q, s.GradingInput(q))
}

// newInteraction builds fresh input state for question q.
func (s State) newInteraction(q curriculum.Question) Interaction {
	in := Interaction{Choice: grading.NoChoice, ActiveSlot: -1}
	switch p := q.Payload.(type) {
	case curriculum.Ordering:
		if tpl, err := curriculum.ParseTemplate(p.Template); err == nil {
			in.Slots = make([]string, tpl.Slots)
		}
		in.Bank = s.shuffledBank(p, 0)
	case curriculum.Deduction:
		in.Clues = make([]ClueState, len(p.Clues))
	}
	return in
}

// shuffledBank orders an ordering question's items. The order depends
// only on the session seed, the question serial and the reset count.
func (s State) shuffledBank(p curriculum.Ordering, reshuffles int) []string {
	ids := make([]string, len(p.Items))
	for i, it := range p.Items {
		ids[i] = it.ID
	}
	rng := rand.New(rand.NewPCG(s.seed, uint64(s.Serial)<<16|uint64(reshuffles)))
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}
