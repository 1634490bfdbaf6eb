package session

import (
	"errors"
	"slices"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/grading"
)

// Config describes a session to start.
type Config struct {
	// Level carries the runtime phases, normally produced by a Planner.
	Level curriculum.Level

	// StartPhase is the phase to begin at. Starting past phase 0 skips
	// the concept and the first phase intro.
	StartPhase int

	// Privileged enables the administrative skip actions.
	Privileged bool

	// Seed drives the ordering-bank shuffles.
	Seed uint64
}

// Start creates the initial state for a session.
func Start(cfg Config) (State, []Effect) {
	r := &reducer{s: State{
		LevelID:    cfg.Level.ID,
		Concept:    cfg.Level.Concept,
		Phases:     cfg.Level.Phases,
		Privileged: cfg.Privileged,
		Input:      blankInteraction(),
		seed:       cfg.Seed,
	}}

	start := max(cfg.StartPhase, 0)
	switch {
	case start == 0 && r.s.Concept != nil:
		r.s.Stage = StageConceptIntro
	case start == 0:
		r.enterPhase(0, true)
	default:
		r.enterPhase(start, false)
	}
	return r.s, r.fx
}

// Reduce applies one action to the session. It returns the next state and
// any effects the caller must run. Terminal states ignore every action.
func Reduce(s State, a Action) (State, []Effect) {
	if s.Stage.Terminal() {
		return s, nil
	}
	r := &reducer{s: s}
	r.apply(a)
	return r.s, r.fx
}

type reducer struct {
	s  State
	fx []Effect
}

func (r *reducer) emit(e Effect) { r.fx = append(r.fx, e) }

func (r *reducer) apply(a Action) {
	switch a := a.(type) {
	case DismissConcept:
		if r.s.Stage == StageConceptIntro {
			r.enterPhase(0, true)
		}
	case DismissPhaseIntro:
		if r.s.Stage == StagePhaseIntro {
			r.enterQuestion()
		}
	case SelectOption:
		r.selectOption(a.Index)
	case TypeText:
		if r.answering(curriculum.KindFreeText) {
			r.s.Input.Text = a.Text
			r.s.Input.Shake = false
		}
	case PlaceItem:
		r.placeItem(a.ItemID)
	case TapSlot:
		r.tapSlot(a.Slot)
	case ResetSlots:
		r.resetSlots()
	case ToggleClue:
		r.toggleClue(a.Index)
	case ClueRevealed:
		r.clueRevealed(a)
	case RateFlashcard:
		r.rateFlashcard(a.Recalled)
	case Submit:
		r.submit()
	case HideHint:
		if a.Serial == r.s.Serial {
			r.s.Input.HintVisible = false
		}
	case ExplanationReady:
		if a.Serial == r.s.Serial && r.s.Stage == StageGraded {
			r.s.Input.AIExplanation = a.Text
		}
	case Next:
		if r.s.Stage == StageGraded {
			r.advance()
		}
	case CelebrationDone:
		if r.s.Stage == StageCelebration {
			r.finish()
		}
	case Close:
		r.s.Stage = StageAbandoned
	case ForceComplete:
		if !r.s.Privileged {
			return
		}
		if r.s.Stage == StageCelebration {
			r.finish()
			return
		}
		r.celebrate()
	case SkipQuestion:
		if r.s.Privileged {
			r.skip()
		}
	case JumpToPhase:
		if r.s.Privileged && a.Phase >= 0 && a.Phase < len(r.s.Phases) {
			r.enterPhase(a.Phase, false)
		}
	}
}

// enterPhase moves to phase idx, skipping empty phases. Past the last
// phase the session celebrates.
func (r *reducer) enterPhase(idx int, intro bool) {
	for idx < len(r.s.Phases) && len(r.s.Phases[idx].Questions) == 0 {
		idx++
	}
	if idx >= len(r.s.Phases) {
		r.celebrate()
		return
	}

	r.s.PhaseIndex = idx
	r.s.QuestionIndex = 0
	if intro {
		r.s.Serial++
		r.s.Input = blankInteraction()
		r.s.Stage = StagePhaseIntro
		return
	}
	r.enterQuestion()
}

// enterQuestion activates the question at the current index with fresh
// input. Malformed questions are reported and skipped.
func (r *reducer) enterQuestion() {
	for {
		q, ok := r.s.CurrentQuestion()
		if !ok {
			r.enterPhase(r.s.PhaseIndex+1, true)
			return
		}
		r.s.Serial++
		if err := curriculum.ValidateQuestion(q); err != nil {
			r.emit(ReportMalformed{QuestionID: q.ID, Err: err})
			r.record(OutcomeSkipped)
			r.s.QuestionIndex++
			continue
		}
		r.s.Input = r.s.newInteraction(q)
		r.s.Stage = StageAnswering
		return
	}
}

func (r *reducer) advance() {
	r.s.QuestionIndex++
	r.enterQuestion()
}

func (r *reducer) celebrate() {
	r.s.Serial++
	r.s.Input = blankInteraction()
	r.s.Stage = StageCelebration
	r.emit(EndCelebrationAfter{Delay: CelebrationDuration})
}

func (r *reducer) finish() {
	r.s.Stage = StageFinished
	r.emit(EmitResult{Result: r.s.result()})
}

func (r *reducer) skip() {
	switch r.s.Stage {
	case StageConceptIntro:
		r.enterPhase(0, true)
	case StagePhaseIntro:
		r.enterQuestion()
	case StageAnswering:
		r.record(OutcomeSkipped)
		r.advance()
	case StageGraded:
		r.advance()
	case StageCelebration:
		r.finish()
	}
}

func (r *reducer) record(o Outcome) {
	r.s.Outcomes = append(slices.Clip(r.s.Outcomes), o)
}

// answering reports whether the session is collecting input for a
// question of one of the given kinds.
func (r *reducer) answering(kinds ...curriculum.Kind) bool {
	if r.s.Stage != StageAnswering {
		return false
	}
	q, ok := r.s.CurrentQuestion()
	return ok && slices.Contains(kinds, q.Kind())
}

func (r *reducer) selectOption(i int) {
	if !r.answering(curriculum.KindMultipleChoice, curriculum.KindDeduction) {
		return
	}
	q, _ := r.s.CurrentQuestion()
	n := 0
	switch p := q.Payload.(type) {
	case curriculum.MultipleChoice:
		n = len(p.Options)
	case curriculum.Deduction:
		n = len(p.Suspects)
	}
	if i < 0 || i >= n {
		return
	}
	r.s.Input.Choice = i
	r.s.Input.Shake = false
}

func (r *reducer) placeItem(id string) {
	if !r.answering(curriculum.KindOrdering) {
		return
	}
	in := &r.s.Input
	at := slices.Index(in.Bank, id)
	if at < 0 {
		return
	}

	target := -1
	if in.ActiveSlot >= 0 && in.ActiveSlot < len(in.Slots) && in.Slots[in.ActiveSlot] == "" {
		target = in.ActiveSlot
	} else {
		target = slices.Index(in.Slots, "")
	}
	if target < 0 {
		return
	}

	in.Slots = slices.Clone(in.Slots)
	in.Slots[target] = id
	in.Bank = slices.Delete(slices.Clone(in.Bank), at, at+1)
	in.ActiveSlot = -1
	in.Shake = false
}

func (r *reducer) tapSlot(slot int) {
	if !r.answering(curriculum.KindOrdering) {
		return
	}
	in := &r.s.Input
	if slot < 0 || slot >= len(in.Slots) {
		return
	}

	if id := in.Slots[slot]; id != "" {
		in.Slots = slices.Clone(in.Slots)
		in.Slots[slot] = ""
		in.Bank = append(slices.Clip(in.Bank), id)
		in.ActiveSlot = slot
	} else if in.ActiveSlot == slot {
		in.ActiveSlot = -1
	} else {
		in.ActiveSlot = slot
	}
	in.Shake = false
}

func (r *reducer) resetSlots() {
	if !r.answering(curriculum.KindOrdering) {
		return
	}
	q, _ := r.s.CurrentQuestion()
	p := q.Payload.(curriculum.Ordering)

	in := &r.s.Input
	in.reshuffles++
	in.Slots = make([]string, len(in.Slots))
	in.Bank = r.s.shuffledBank(p, in.reshuffles)
	in.ActiveSlot = -1
	in.Shake = false
}

func (r *reducer) toggleClue(i int) {
	if r.s.Stage != StageAnswering && r.s.Stage != StageGraded {
		return
	}
	q, ok := r.s.CurrentQuestion()
	if !ok || q.Kind() != curriculum.KindDeduction {
		return
	}
	in := &r.s.Input
	if i < 0 || i >= len(in.Clues) {
		return
	}

	in.Clues = slices.Clone(in.Clues)
	if in.Clues[i].Status != ClueHidden {
		in.Clues[i] = ClueState{Status: ClueHidden}
		return
	}
	in.clueTicks++
	in.Clues[i] = ClueState{Status: ClueRunning, Token: in.clueTicks}
	r.emit(RevealClueAfter{
		Index:  i,
		Serial: r.s.Serial,
		Token:  in.clueTicks,
		Delay:  ClueRevealDelay,
	})
}

func (r *reducer) clueRevealed(a ClueRevealed) {
	in := &r.s.Input
	if a.Serial != r.s.Serial || a.Index < 0 || a.Index >= len(in.Clues) {
		return
	}
	c := in.Clues[a.Index]
	if c.Status != ClueRunning || c.Token != a.Token {
		return
	}
	in.Clues = slices.Clone(in.Clues)
	in.Clues[a.Index].Status = ClueShown
}

func (r *reducer) rateFlashcard(recalled bool) {
	if !r.answering(curriculum.KindFlashcard) {
		return
	}
	q, _ := r.s.CurrentQuestion()

	r.s.Input.Correct = recalled
	r.s.Stage = StageGraded
	if recalled {
		r.record(OutcomeRecalled)
		return
	}
	r.s.Mistakes = append(slices.Clip(r.s.Mistakes), MistakePair{
		Question: q,
		Answer:   grading.AnswerText(q, grading.Recall(false)),
	})
	r.record(OutcomeForgotten)
}

func (r *reducer) submit() {
	if r.s.Stage != StageAnswering {
		return
	}
	q, ok := r.s.CurrentQuestion()
	if !ok || q.Kind() == curriculum.KindFlashcard {
		return
	}

	in := r.s.GradingInput(q)
	correct, err := grading.Grade(q, in)
	if errors.Is(err, grading.ErrIncomplete) {
		return
	}
	if err != nil {
		r.emit(ReportMalformed{QuestionID: q.ID, Err: err})
		r.record(OutcomeSkipped)
		r.advance()
		return
	}

	st := &r.s.Input
	st.Shake = false

	if correct {
		xp := XPForPhase(r.s.PhaseIndex)
		outcome := OutcomeFirstTry
		if st.Attempts == 0 {
			r.s.CorrectIDs = append(slices.Clip(r.s.CorrectIDs), q.ID)
		} else {
			xp = SecondAttemptXP(r.s.PhaseIndex)
			outcome = OutcomeSecondTry
		}
		r.s.XP += xp
		st.Correct = true
		st.AwardedXP = xp
		st.HintVisible = false
		r.s.Stage = StageGraded
		r.record(outcome)
		return
	}

	if st.Attempts == 0 {
		st.Attempts = 1
		st.Shake = true
		if q.Hint != "" {
			st.HintVisible = true
			r.emit(HideHintAfter{Serial: r.s.Serial, Delay: HintDisplayDuration})
		}
		return
	}

	answer := grading.AnswerText(q, in)
	st.Attempts = 2
	st.Correct = false
	st.HintVisible = false
	r.s.Mistakes = append(slices.Clip(r.s.Mistakes), MistakePair{Question: q, Answer: answer})
	r.s.Stage = StageGraded
	r.record(OutcomeMissed)
	r.emit(RequestExplanation{Serial: r.s.Serial, Question: q, Answer: answer})
}

func blankInteraction() Interaction {
	return Interaction{Choice: grading.NoChoice, ActiveSlot: -1}
}
