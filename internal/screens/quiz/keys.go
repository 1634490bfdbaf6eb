package quiz

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/router"
	"github.com/abhisek/chemquest/internal/screen"
	"github.com/abhisek/chemquest/internal/session"
)

func (s *QuizScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, router.PopToRoot
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s, s.abandon()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if key == "esc" {
		if s.state.Stage < session.StageCelebration {
			s.confirmQuit = true
		}
		return s, nil
	}

	if s.state.Privileged {
		switch key {
		case "ctrl+f":
			return s, s.dispatch(session.ForceComplete{})
		case "ctrl+s":
			return s, s.dispatch(session.SkipQuestion{})
		case "ctrl+j":
			return s, s.dispatch(session.JumpToPhase{Phase: s.state.PhaseIndex + 1})
		}
	}

	confirm := key == "enter" || key == "space"
	switch s.state.Stage {
	case session.StageConceptIntro:
		if confirm {
			return s, s.dispatch(session.DismissConcept{})
		}
	case session.StagePhaseIntro:
		if confirm {
			return s, s.dispatch(session.DismissPhaseIntro{})
		}
	case session.StageAnswering:
		return s.answerKey(msg)
	case session.StageGraded:
		if confirm {
			return s, s.dispatch(session.Next{})
		}
	case session.StageCelebration:
		if confirm {
			return s, s.dispatch(session.CelebrationDone{})
		}
	}
	return s, nil
}

func (s *QuizScreen) answerKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	q, ok := s.state.CurrentQuestion()
	if !ok {
		return s, nil
	}
	key := msg.String()

	switch p := q.Payload.(type) {
	case curriculum.MultipleChoice:
		return s, s.chooseKey(key, len(p.Options))

	case curriculum.FreeText:
		if key == "enter" {
			return s, s.dispatch(session.Submit{})
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, tea.Batch(cmd, s.dispatch(session.TypeText{Text: s.input.Value()}))

	case curriculum.Flashcard:
		if !s.flipped {
			if key == "enter" || key == "space" {
				s.flipped = true
			}
			return s, nil
		}
		switch key {
		case "y", "Y":
			return s, s.dispatch(session.RateFlashcard{Recalled: true})
		case "n", "N":
			return s, s.dispatch(session.RateFlashcard{Recalled: false})
		}

	case curriculum.Ordering:
		return s, s.orderingKey(key)

	case curriculum.Deduction:
		if i, ok := digit(key); ok {
			return s, s.dispatch(session.ToggleClue{Index: i})
		}
		if key == "enter" {
			return s, s.dispatch(session.Submit{})
		}
		return s, s.moveCursor(key, len(p.Suspects))
	}
	return s, nil
}

// chooseKey handles option selection: arrows move and select, digits
// pick directly, enter submits.
func (s *QuizScreen) chooseKey(key string, n int) tea.Cmd {
	if key == "enter" {
		return s.dispatch(session.Submit{})
	}
	if i, ok := digit(key); ok && i < n {
		s.cursor = i
		return s.dispatch(session.SelectOption{Index: i})
	}
	return s.moveCursor(key, n)
}

func (s *QuizScreen) moveCursor(key string, n int) tea.Cmd {
	if n == 0 {
		return nil
	}
	switch key {
	case "up", "k":
		s.cursor = max(s.cursor-1, 0)
	case "down", "j":
		s.cursor = min(s.cursor+1, n-1)
	default:
		return nil
	}
	return s.dispatch(session.SelectOption{Index: s.cursor})
}

func (s *QuizScreen) orderingKey(key string) tea.Cmd {
	bank := s.state.Input.Bank
	place := func() tea.Cmd {
		if s.cursor < 0 || s.cursor >= len(bank) {
			return nil
		}
		cmd := s.dispatch(session.PlaceItem{ItemID: bank[s.cursor]})
		s.cursor = min(s.cursor, max(len(s.state.Input.Bank)-1, 0))
		return cmd
	}

	switch key {
	case "left", "h":
		s.cursor = max(s.cursor-1, 0)
	case "right", "l":
		s.cursor = min(s.cursor+1, max(len(bank)-1, 0))
	case "space":
		return place()
	case "enter":
		if s.state.CanSubmit() {
			return s.dispatch(session.Submit{})
		}
		return place()
	case "r", "R":
		s.cursor = 0
		return s.dispatch(session.ResetSlots{})
	default:
		if i, ok := digit(key); ok {
			return s.dispatch(session.TapSlot{Slot: i})
		}
	}
	return nil
}

// digit maps "1".."9" to a zero-based index.
func digit(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	return int(key[0] - '1'), true
}
