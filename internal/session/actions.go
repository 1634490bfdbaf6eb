package session

import (
	"time"

	"github.com/abhisek/chemquest/internal/curriculum"
)

// Action is an input to Reduce. The set is closed.
type Action interface{ isAction() }

type (
	DismissConcept    struct{}
	DismissPhaseIntro struct{}

	// SelectOption picks a multiple-choice option or deduction suspect.
	SelectOption struct{ Index int }

	// TypeText replaces the free-text answer.
	TypeText struct{ Text string }

	// PlaceItem moves a bank item into the active slot, or the first
	// empty slot when none is active.
	PlaceItem struct{ ItemID string }

	// TapSlot returns a placed item to the bank and makes the slot
	// active. Tapping an empty slot toggles it active.
	TapSlot struct{ Slot int }

	// ResetSlots returns every item to a freshly shuffled bank.
	ResetSlots struct{}

	// ToggleClue starts revealing a hidden clue, or hides it again.
	ToggleClue struct{ Index int }

	// ClueRevealed completes a reveal started by ToggleClue.
	ClueRevealed struct {
		Index  int
		Serial int
		Token  int
	}

	// RateFlashcard records the learner's self-assessment.
	RateFlashcard struct{ Recalled bool }

	Submit struct{}

	HideHint struct{ Serial int }

	// ExplanationReady patches in an AI explanation for question Serial.
	ExplanationReady struct {
		Serial int
		Text   string
	}

	Next            struct{}
	CelebrationDone struct{}

	// Close abandons the session. No result is produced.
	Close struct{}

	// Privileged only.
	ForceComplete struct{}
	SkipQuestion  struct{}
	JumpToPhase   struct{ Phase int }
)

func (DismissConcept) isAction()    {}
func (DismissPhaseIntro) isAction() {}
func (SelectOption) isAction()      {}
func (TypeText) isAction()          {}
func (PlaceItem) isAction()         {}
func (TapSlot) isAction()           {}
func (ResetSlots) isAction()        {}
func (ToggleClue) isAction()        {}
func (ClueRevealed) isAction()      {}
func (RateFlashcard) isAction()     {}
func (Submit) isAction()            {}
func (HideHint) isAction()          {}
func (ExplanationReady) isAction()  {}
func (Next) isAction()              {}
func (CelebrationDone) isAction()   {}
func (Close) isAction()             {}
func (ForceComplete) isAction()     {}
func (SkipQuestion) isAction()      {}
func (JumpToPhase) isAction()       {}

// Effect is work Reduce asks its caller to perform. Delayed effects feed
// their completion back as an Action.
type Effect interface{ isEffect() }

type (
	// RevealClueAfter asks for ClueRevealed after Delay.
	RevealClueAfter struct {
		Index  int
		Serial int
		Token  int
		Delay  time.Duration
	}

	// HideHintAfter asks for HideHint after Delay.
	HideHintAfter struct {
		Serial int
		Delay  time.Duration
	}

	// RequestExplanation asks for an AI explanation of a wrong answer,
	// delivered as ExplanationReady. Failure is ignored.
	RequestExplanation struct {
		Serial   int
		Question curriculum.Question
		Answer   string
	}

	// EndCelebrationAfter asks for CelebrationDone after Delay.
	EndCelebrationAfter struct{ Delay time.Duration }

	// EmitResult hands the finished session's result to the caller.
	// Emitted exactly once per session.
	EmitResult struct{ Result Result }

	// ReportMalformed flags a question that was skipped because it cannot
	// be graded.
	ReportMalformed struct {
		QuestionID string
		Err        error
	}
)

func (RevealClueAfter) isEffect()     {}
func (HideHintAfter) isEffect()       {}
func (RequestExplanation) isEffect()  {}
func (EndCelebrationAfter) isEffect() {}
func (EmitResult) isEffect()          {}
func (ReportMalformed) isEffect()     {}
