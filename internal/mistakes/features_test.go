package mistakes_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/cucumber/godog"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/grading"
	"github.com/abhisek/chemquest/internal/mistakes"
	"github.com/abhisek/chemquest/internal/progress"
)

func TestMistakeRetryFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "mistake-retry",
		ScenarioInitializer: initializeRetryScenario,
		Options: &godog.Options{
			Format:   "progress",
			Paths:    []string{"features"},
			Output:   io.Discard,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("mistake retry features failed")
	}
}

type retryWorld struct {
	profile progress.Profile
	last    mistakes.Outcome
}

func initializeRetryScenario(ctx *godog.ScenarioContext) {
	w := &retryWorld{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		*w = retryWorld{profile: progress.New("learner")}
		return ctx, nil
	})

	ctx.Step(`^a mistake "([^"]*)" with free-text answer "([^"]*)" and wrong answer "([^"]*)"$`, w.aFreeTextMistake)
	ctx.Step(`^the learner has (\d+) total XP$`, w.hasTotalXP)
	ctx.Step(`^the learner retries with "([^"]*)"$`, w.retriesWith)
	ctx.Step(`^the retry is (correct|incorrect)$`, w.retryIs)
	ctx.Step(`^the mistake book is empty$`, w.bookIsEmpty)
	ctx.Step(`^the mistake book has (\d+) entries$`, w.bookHas)
	ctx.Step(`^the learner still has (\d+) total XP$`, w.stillHasTotalXP)
}

func (w *retryWorld) aFreeTextMistake(id, answer, wrong string) error {
	w.profile.Mistakes = append(w.profile.Mistakes, progress.Mistake{
		ID:      "m-" + id,
		LevelID: "ions",
		Question: curriculum.Question{
			ID:      id,
			Prompt:  "Name the compound.",
			Payload: curriculum.FreeText{Answer: answer},
		},
		Answer: wrong,
	})
	return nil
}

func (w *retryWorld) hasTotalXP(xp int) error {
	w.profile.Stats.TotalXP = xp
	return nil
}

// retriesWith retries the oldest mistake and resolves it on success, as the
// mistake screen does once the acknowledgement delay has passed.
func (w *retryWorld) retriesWith(text string) error {
	if len(w.profile.Mistakes) == 0 {
		return fmt.Errorf("no mistakes to retry")
	}
	m := w.profile.Mistakes[0]
	out, err := mistakes.Retry(m, grading.Type(text))
	if err != nil {
		return err
	}
	w.last = out
	if out.Correct {
		w.profile, _ = mistakes.Resolve(w.profile, m.ID)
	}
	return nil
}

func (w *retryWorld) retryIs(verdict string) error {
	if want := verdict == "correct"; w.last.Correct != want {
		return fmt.Errorf("retry correct = %v, want %v", w.last.Correct, want)
	}
	return nil
}

func (w *retryWorld) bookIsEmpty() error {
	return w.bookHas(0)
}

func (w *retryWorld) bookHas(n int) error {
	if got := len(w.profile.Mistakes); got != n {
		return fmt.Errorf("mistake book has %d entries, want %d", got, n)
	}
	return nil
}

func (w *retryWorld) stillHasTotalXP(xp int) error {
	if w.profile.Stats.TotalXP != xp {
		return fmt.Errorf("total XP = %d, want %d", w.profile.Stats.TotalXP, xp)
	}
	return nil
}
