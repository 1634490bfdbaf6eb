package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/grading"
	"github.com/abhisek/chemquest/internal/mistakes"
	"github.com/abhisek/chemquest/internal/progress"
	"github.com/abhisek/chemquest/internal/session"
)

// LevelSummary is one row of the level map.
type LevelSummary struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Order          int     `json:"order"`
	Unlocked       bool    `json:"unlocked"`
	Completed      bool    `json:"completed"`
	Score          int     `json:"score"`
	Mastery        float64 `json:"mastery"`
	TotalQuestions int     `json:"total_questions"`
	Mistakes       int     `json:"mistakes"`
}

// LevelResponse is a level prepared for one session.
type LevelResponse struct {
	Level      curriculum.LevelDoc `json:"level"`
	StartPhase int                 `json:"start_phase"`
	Offline    bool                `json:"offline"`
}

// ProfileResponse is the learner's stats and level progress.
type ProfileResponse struct {
	UserID         string         `json:"user_id"`
	TotalXP        int            `json:"total_xp"`
	WeeklyXP       int            `json:"weekly_xp"`
	SessionsPlayed int            `json:"sessions_played"`
	Mistakes       int            `json:"mistakes"`
	Levels         []LevelSummary `json:"levels"`
}

// MistakeResponse is one mistake book entry.
type MistakeResponse struct {
	ID        string                 `json:"id"`
	LevelID   string                 `json:"level_id"`
	Question  curriculum.QuestionDoc `json:"question"`
	Answer    string                 `json:"answer"`
	CreatedAt time.Time              `json:"created_at"`
}

// RetryRequest is an answer to a mistake. Only the fields for the
// question's kind are read.
type RetryRequest struct {
	Choice   *int     `json:"choice"`
	Text     string   `json:"text"`
	Sequence []string `json:"sequence"`
	Recalled bool     `json:"recalled"`
}

// RetryResponse reports the graded retry. Resolved is set when the
// mistake left the book.
type RetryResponse struct {
	Correct  bool   `json:"correct"`
	Answer   string `json:"answer"`
	Resolved bool   `json:"resolved"`
}

// ResultRequest is a finished session reported by the client.
type ResultRequest struct {
	XP           int              `json:"xp" binding:"gte=0"`
	CorrectIDs   []string         `json:"correct_ids"`
	Mistakes     []MistakeRequest `json:"mistakes"`
	Questions    int              `json:"questions" binding:"gte=0"`
	FirstTry     int              `json:"first_try" binding:"gte=0"`
	DurationSecs int              `json:"duration_secs" binding:"gte=0"`
}

// MistakeRequest names a missed question by QuestionID, or carries the
// full Question when it came from the remote bank.
type MistakeRequest struct {
	QuestionID string                  `json:"question_id"`
	Question   *curriculum.QuestionDoc `json:"question"`
	Answer     string                  `json:"answer"`
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"remote_content": h.game.Remote(),
		"tutor":          h.game.CanExplain(),
	})
}

// ListLevels returns the level map for the user.
func (h *Handler) ListLevels(c *gin.Context) {
	p, err := h.game.Profile(c.Request.Context(), h.userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.levelSummaries(p))
}

// GetLevel hydrates a level and selects this session's questions. The
// optional phase query parameter resumes at that phase.
func (h *Handler) GetLevel(c *gin.Context) {
	phase := 0
	if v := c.Query("phase"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phase must be a non-negative integer"})
			return
		}
		phase = n
	}

	prep, err := h.game.Prepare(c.Request.Context(), h.userID(c), c.Param("id"), phase)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, LevelResponse{
		Level:      curriculum.DocFromLevel(prep.Level),
		StartPhase: prep.StartPhase,
		Offline:    prep.Offline,
	})
}

// SubmitResult folds a finished session into the profile.
func (h *Handler) SubmitResult(c *gin.Context) {
	var req ResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	levelID := c.Param("id")
	level, ok := h.game.Registry().Level(levelID)
	if !ok {
		h.fail(c, fmt.Errorf("%w: %s", progress.ErrUnknownLevel, levelID))
		return
	}

	res := session.Result{LevelID: levelID, XP: req.XP, CorrectIDs: req.CorrectIDs}
	for i, m := range req.Mistakes {
		q, err := resolveQuestion(level, m)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("mistakes[%d]: %v", i, err)})
			return
		}
		res.Mistakes = append(res.Mistakes, session.MistakePair{Question: q, Answer: m.Answer})
	}

	sum := session.Summary{
		LevelID:  levelID,
		XP:       req.XP,
		Total:    req.Questions,
		FirstTry: req.FirstTry,
		Mistakes: len(res.Mistakes),
	}
	userID := h.userID(c)
	p, err := h.game.Complete(c.Request.Context(), userID, res, sum, time.Duration(req.DurationSecs)*time.Second)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.profileResponse(p))
}

// GetProfile returns stats and level progress.
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.game.Profile(c.Request.Context(), h.userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.profileResponse(p))
}

// ListMistakes returns the mistake book, newest first, optionally
// filtered by the level query parameter.
func (h *Handler) ListMistakes(c *gin.Context) {
	book, err := h.game.Mistakes(c.Request.Context(), h.userID(c), c.Query("level"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]MistakeResponse, len(book))
	for i, m := range book {
		out[i] = MistakeResponse{
			ID:        m.ID,
			LevelID:   m.LevelID,
			Question:  curriculum.DocFromQuestion(m.Question),
			Answer:    m.Answer,
			CreatedAt: m.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, out)
}

// RetryMistake grades a retry. A correct answer resolves the mistake
// immediately; pacing the acknowledgement is left to the client.
func (h *Handler) RetryMistake(c *gin.Context) {
	var req RetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := grading.Input{Choice: grading.NoChoice, Text: req.Text, Sequence: req.Sequence, Recalled: req.Recalled}
	if req.Choice != nil {
		in.Choice = *req.Choice
	}

	ctx := c.Request.Context()
	userID, id := h.userID(c), c.Param("id")
	out, err := h.game.RetryMistake(ctx, userID, id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := RetryResponse{Correct: out.Correct, Answer: out.Answer}
	if out.Correct {
		if _, err := h.game.ResolveMistake(ctx, userID, id); err != nil {
			h.fail(c, err)
			return
		}
		resp.Resolved = true
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) levelSummaries(p progress.Profile) []LevelSummary {
	levels := h.game.Registry().Levels()
	out := make([]LevelSummary, 0, len(levels))
	for _, l := range levels {
		lp, _ := p.Level(l.ID)
		out = append(out, LevelSummary{
			ID:             l.ID,
			Title:          l.Title,
			Order:          l.Order,
			Unlocked:       lp.Unlocked,
			Completed:      lp.Completed,
			Score:          lp.Score,
			Mastery:        lp.Mastery(),
			TotalQuestions: lp.TotalQuestions,
			Mistakes:       len(mistakes.Filter(p.Mistakes, l.ID)),
		})
	}
	return out
}

func (h *Handler) profileResponse(p progress.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:         p.UserID,
		TotalXP:        p.Stats.TotalXP,
		WeeklyXP:       p.Stats.WeeklyXPAt(time.Now()),
		SessionsPlayed: p.Stats.SessionsPlayed,
		Mistakes:       len(p.Mistakes),
		Levels:         h.levelSummaries(p),
	}
}

func resolveQuestion(level curriculum.Level, m MistakeRequest) (curriculum.Question, error) {
	if m.Question != nil {
		q, err := m.Question.ToQuestion()
		if err != nil {
			return curriculum.Question{}, err
		}
		if err := curriculum.ValidateQuestion(q); err != nil {
			return curriculum.Question{}, err
		}
		return q, nil
	}
	if m.QuestionID == "" {
		return curriculum.Question{}, fmt.Errorf("question_id or question is required")
	}
	q, ok := level.Question(m.QuestionID)
	if !ok {
		return curriculum.Question{}, fmt.Errorf("unknown question %q", m.QuestionID)
	}
	return q, nil
}
