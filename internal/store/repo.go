package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	UserID  string    // session events only
	Purpose string    // LLM events only
}

// ProfileSnapshot is the persisted form of a learner profile. It is stored
// as a single JSON document per user.
type ProfileSnapshot struct {
	UserID    string        `json:"user_id"`
	Version   int           `json:"version"`
	Stats     StatsData     `json:"stats"`
	Levels    []LevelData   `json:"levels,omitempty"`
	Mistakes  []MistakeData `json:"mistakes,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// StatsData holds aggregate counters.
type StatsData struct {
	TotalXP        int       `json:"total_xp"`
	WeeklyXP       int       `json:"weekly_xp"`
	WeekStart      time.Time `json:"week_start"`
	SessionsPlayed int       `json:"sessions_played"`
}

// LevelData holds per-level progress.
type LevelData struct {
	LevelID        string   `json:"level_id"`
	Unlocked       bool     `json:"unlocked"`
	Completed      bool     `json:"completed"`
	Score          int      `json:"score"`
	AnsweredIDs    []string `json:"answered_ids,omitempty"`
	TotalQuestions int      `json:"total_questions"`
}

// MistakeData holds one retained mistake. Question is the question document
// encoded as JSON so the store stays independent of the content model.
type MistakeData struct {
	ID        string          `json:"id"`
	LevelID   string          `json:"level_id"`
	Question  json.RawMessage `json:"question"`
	Answer    string          `json:"answer"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProfileRepo persists learner profiles.
type ProfileRepo interface {
	// Load returns the stored profile, or nil if none exists.
	Load(ctx context.Context, userID string) (*ProfileSnapshot, error)

	// Save inserts or replaces the profile.
	Save(ctx context.Context, snap *ProfileSnapshot) error

	// Delete removes the profile. Deleting a missing profile is not an error.
	Delete(ctx context.Context, userID string) error
}

// SessionEventData captures the outcome of one quiz session.
type SessionEventData struct {
	UserID       string
	LevelID      string
	Action       string // "start", "complete" or "abandon"
	XP           int
	Questions    int
	FirstTry     int
	Mistakes     int
	DurationSecs int
}

// SessionEvent is a stored session event.
type SessionEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs float64
}

// ModelUsage aggregates LLM usage for one model within one purpose.
type ModelUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendSessionEvent records a finished or abandoned quiz session.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QuerySessionEvents returns session events, newest first.
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEvent, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM request events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one LLM request event, or nil if not found.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates calls and tokens per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates calls and tokens per purpose and model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
