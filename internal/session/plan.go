package session

import "time"

// QuestionsPerPhase is the number of questions served from each sampled
// phase.
const QuestionsPerPhase = 5

// phaseXP is full credit by phase index. Later phases reuse the last
// entry.
var phaseXP = [...]int{10, 15, 20, 30}

// XPForPhase returns full first-attempt credit for a question in the
// given phase.
func XPForPhase(phase int) int {
	if phase < 0 {
		phase = 0
	}
	if phase >= len(phaseXP) {
		phase = len(phaseXP) - 1
	}
	return phaseXP[phase]
}

// SecondAttemptXP returns the credit for a question answered correctly on
// the second attempt.
func SecondAttemptXP(phase int) int {
	return XPForPhase(phase) / 2
}

// Timings for delayed transitions. The controller schedules them; the
// reducer only names them.
const (
	ClueRevealDelay     = 1200 * time.Millisecond
	HintDisplayDuration = 3 * time.Second
	CelebrationDuration = 2500 * time.Millisecond
)
