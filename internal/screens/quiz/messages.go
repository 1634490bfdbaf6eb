package quiz

import (
	"github.com/abhisek/chemquest/internal/progress"
	"github.com/abhisek/chemquest/internal/session"
)

// actionMsg delivers a delayed or asynchronous session action.
type actionMsg struct {
	Action session.Action
}

// explainFailedMsg reports that the tutor could not explain a mistake.
type explainFailedMsg struct {
	Serial int
	Err    error
}

// completedMsg is sent once the finished session is folded into the
// profile.
type completedMsg struct {
	Summary session.Summary
	Before  progress.Profile
	After   progress.Profile
	Err     error
}
