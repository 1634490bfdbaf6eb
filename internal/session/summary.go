package session

// Summary holds the end-of-level numbers shown to the learner.
type Summary struct {
	LevelID   string
	XP        int
	Total     int
	FirstTry  int
	SecondTry int
	Missed    int
	Recalled  int
	Forgotten int
	Skipped   int
	Mistakes  int
}

// Accuracy returns the share of graded questions answered correctly on
// the first attempt. Flashcards and skipped questions are excluded.
func (s Summary) Accuracy() float64 {
	graded := s.FirstTry + s.SecondTry + s.Missed
	if graded == 0 {
		return 0
	}
	return float64(s.FirstTry) / float64(graded)
}

// BuildSummary tallies a session's outcomes.
func BuildSummary(s State) Summary {
	sum := Summary{
		LevelID:  s.LevelID,
		XP:       s.XP,
		Total:    len(s.Outcomes),
		Mistakes: len(s.Mistakes),
	}
	for _, o := range s.Outcomes {
		switch o {
		case OutcomeFirstTry:
			sum.FirstTry++
		case OutcomeSecondTry:
			sum.SecondTry++
		case OutcomeMissed:
			sum.Missed++
		case OutcomeRecalled:
			sum.Recalled++
		case OutcomeForgotten:
			sum.Forgotten++
		case OutcomeSkipped:
			sum.Skipped++
		}
	}
	return sum
}
