package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/grading"
	"github.com/abhisek/chemquest/internal/session"
	"github.com/abhisek/chemquest/internal/ui/components"
	"github.com/abhisek/chemquest/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	switch {
	case s.errMsg != "":
		body = lipgloss.NewStyle().Foreground(theme.Error).Render("Could not save results: "+s.errMsg) +
			"\n\n" + theme.Hint.Render("Press any key to return to the lab")
	case s.confirmQuit:
		body = components.Card(
			theme.Body.Bold(true).Render("Leave this level?")+"\n\n"+
				theme.Hint.Render("Progress from this run will not be saved."), cw, false)
	default:
		body = s.renderStage(cw)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (s *QuizScreen) renderStage(cw int) string {
	st := s.state
	switch st.Stage {
	case session.StageConceptIntro:
		c := st.Concept
		return components.Card(
			theme.Title.Render(components.Formula(c.Title))+"\n\n"+
				theme.Body.Width(cw-8).Render(components.Formula(c.Body))+"\n\n"+
				theme.Hint.Render("Press Enter to begin"), cw, false)

	case session.StagePhaseIntro:
		p, _ := st.CurrentPhase()
		var b strings.Builder
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Phase %d of %d", st.PhaseIndex+1, len(st.Phases))))
		b.WriteString("\n")
		b.WriteString(theme.Title.Render(p.Title))
		if p.Difficulty != "" {
			b.WriteString("\n" + theme.Subtitle.Render(p.Difficulty))
		}
		if p.Story != "" {
			b.WriteString("\n\n" + theme.Body.Width(cw-8).Render(components.Formula(p.Story)))
		}
		b.WriteString("\n\n" + theme.Hint.Render("Press Enter to start"))
		return components.Card(b.String(), cw, false)

	case session.StageAnswering, session.StageGraded:
		return s.renderQuestion(cw)

	case session.StageCelebration:
		return components.Card(
			lipgloss.NewStyle().Foreground(theme.Flame).Bold(true).Render("⚗  Level complete!  ⚗")+"\n\n"+
				theme.Body.Render(fmt.Sprintf("%d XP earned", st.XP)), cw, false)

	case session.StageFinished:
		return theme.Hint.Render("Recording results...")
	}
	return ""
}

func (s *QuizScreen) renderQuestion(cw int) string {
	st := s.state
	q, ok := st.CurrentQuestion()
	if !ok {
		return ""
	}
	p, _ := st.CurrentPhase()

	var b strings.Builder

	info := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("%s · %s", p.Title, q.Kind().DisplayName()))
	count := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  ⚗ %d", st.Position(), st.TotalQuestions(), st.XP))
	gap := max(cw-lipgloss.Width(info)-lipgloss.Width(count), 1)
	b.WriteString(info + strings.Repeat(" ", gap) + count + "\n")

	done := float64(st.Position()-1) / float64(max(st.TotalQuestions(), 1))
	b.WriteString(components.NewProgressBar("", done, false, cw).View())
	b.WriteString("\n\n")

	b.WriteString(theme.Body.Bold(true).Width(cw).Render(components.Formula(q.Prompt)))
	b.WriteString("\n\n")

	graded := st.Stage == session.StageGraded
	in := st.Input

	var answer string
	switch pl := q.Payload.(type) {
	case curriculum.MultipleChoice:
		answer = components.OptionList{
			Options: pl.Options, Cursor: s.cursor, Chosen: in.Choice,
			Correct: pl.Correct, Graded: graded,
		}.View()
	case curriculum.FreeText:
		if graded {
			answer = "Your answer: " + components.Formula(in.Text)
		} else {
			answer = "Answer: " + s.input.View()
		}
	case curriculum.Flashcard:
		answer = s.renderFlashcard(pl, graded)
	case curriculum.Ordering:
		answer = s.renderOrdering(pl, graded)
	case curriculum.Deduction:
		answer = s.renderDeduction(pl, graded)
	}
	b.WriteString(components.Card(answer, cw, in.Shake))
	b.WriteString("\n")

	switch {
	case graded:
		b.WriteString(s.renderVerdict(q, cw))
	case in.Shake:
		b.WriteString(theme.Incorrect.Render("Not quite, one more try."))
		if in.HintVisible && q.Hint != "" {
			b.WriteString("\n" + theme.Hint.Render("Hint: "+components.Formula(q.Hint)))
		}
	case q.Kind() != curriculum.KindFlashcard:
		b.WriteString(components.Button{Label: "Submit", Key: "Enter", Enabled: st.CanSubmit()}.View())
	}
	return b.String()
}

func (s *QuizScreen) renderFlashcard(p curriculum.Flashcard, graded bool) string {
	if !s.flipped && !graded {
		return theme.Hint.Render("Recall the answer, then press Space to flip.")
	}
	back := lipgloss.NewStyle().Foreground(theme.Flame).Bold(true).Render(components.Formula(p.Back))
	if graded {
		return back
	}
	return back + "\n\n" + theme.Body.Render("Did you recall it?  [y]es  [n]o")
}

func (s *QuizScreen) renderOrdering(p curriculum.Ordering, graded bool) string {
	in := s.state.Input
	tpl, err := curriculum.ParseTemplate(p.Template)
	if err != nil {
		return theme.Incorrect.Render("This question cannot be displayed.")
	}

	var parts []string
	for _, seg := range tpl.Segments {
		if !seg.IsSlot() {
			parts = append(parts, " "+components.Formula(strings.TrimSpace(seg.Literal))+" ")
			continue
		}
		content := "   "
		if seg.Slot < len(in.Slots) && in.Slots[seg.Slot] != "" {
			if it, ok := p.ItemByID(in.Slots[seg.Slot]); ok {
				content = components.Formula(it.Content)
			}
		}
		style := theme.Slot
		if seg.Slot == in.ActiveSlot && !graded {
			style = theme.ActiveSlot
		}
		parts = append(parts, style.Render(fmt.Sprintf("%d│%s", seg.Slot+1, content)))
	}
	equation := lipgloss.JoinHorizontal(lipgloss.Center, parts...)
	if graded {
		return equation
	}

	chips := make([]string, 0, len(in.Bank))
	for i, id := range in.Bank {
		it, _ := p.ItemByID(id)
		style := theme.Chip
		if i == s.cursor {
			style = theme.SelectedChip
		}
		chips = append(chips, style.Render(components.Formula(it.Content)))
	}
	bank := theme.Hint.Render("All items placed.")
	if len(chips) > 0 {
		bank = strings.Join(chips, " ")
	}
	return equation + "\n\n" + bank
}

func (s *QuizScreen) renderDeduction(p curriculum.Deduction, graded bool) string {
	in := s.state.Input
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Evidence") + "\n")
	for i, c := range p.Clues {
		status := session.ClueHidden
		if i < len(in.Clues) {
			status = in.Clues[i].Status
		}
		line := fmt.Sprintf("%d. %s", i+1, components.Formula(c.Stimulus))
		switch status {
		case session.ClueShown:
			line += "  →  " + lipgloss.NewStyle().Foreground(theme.Flask).Render(components.Formula(c.Result))
		case session.ClueRunning:
			line += "  " + theme.Hint.Render("observing...")
		default:
			line += "  " + theme.Hint.Render(fmt.Sprintf("[%d] to test", i+1))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + theme.Subtitle.Render("Suspects") + "\n")
	b.WriteString(components.OptionList{
		Options: p.Suspects, Cursor: s.cursor, Chosen: in.Choice,
		Correct: p.Correct, Graded: graded,
	}.View())
	return b.String()
}

func (s *QuizScreen) renderVerdict(q curriculum.Question, cw int) string {
	in := s.state.Input
	var b strings.Builder
	switch {
	case q.Kind() == curriculum.KindFlashcard && in.Correct:
		b.WriteString(theme.Correct.Render("Nice recall!"))
	case q.Kind() == curriculum.KindFlashcard:
		b.WriteString(theme.Incorrect.Render("Added to your mistake book."))
	case in.Correct:
		b.WriteString(theme.Correct.Render(fmt.Sprintf("Correct! +%d XP", in.AwardedXP)))
	default:
		b.WriteString(theme.Incorrect.Render("Not quite."))
		b.WriteString("  " + theme.Body.Render("Answer: "+components.Formula(grading.CanonicalText(q))))
	}

	if q.Explanation != "" {
		b.WriteString("\n\n" + theme.Body.Width(cw).Render(components.Formula(q.Explanation)))
	}

	if !in.Correct && q.Kind() != curriculum.KindFlashcard {
		switch {
		case in.AIExplanation != "":
			b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(theme.Flask).Render("Tutor: ") +
				theme.Body.Width(cw-7).Render(in.AIExplanation))
		case s.game.CanExplain() && s.explainFailed != s.state.Serial:
			b.WriteString("\n\n" + theme.Hint.Render("Asking the tutor..."))
		}
	}
	b.WriteString("\n\n" + theme.Hint.Render("Press Enter to continue"))
	return b.String()
}
