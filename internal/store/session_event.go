package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const sessionEventsTable = "session_events"

var sessionEventColumns = []string{
	"id", "sequence", "created_at", "user_id", "level_id", "action",
	"xp", "questions", "first_try", "mistakes", "duration_secs",
}

// AppendSessionEvent records a finished or abandoned quiz session.
func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	return r.insert(ctx, sessionEventsTable,
		[]string{"user_id", "level_id", "action", "xp", "questions", "first_try", "mistakes", "duration_secs"},
		[]any{data.UserID, data.LevelID, data.Action, data.XP, data.Questions, data.FirstTry, data.Mistakes, data.DurationSecs},
	)
}

// QuerySessionEvents returns session events, newest first.
func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEvent, error) {
	sel := entsql.Dialect(r.dialect).
		Select(sessionEventColumns...).
		From(entsql.Table(sessionEventsTable))
	if opts.UserID != "" {
		sel.Where(entsql.EQ("user_id", opts.UserID))
	}
	query, args := applyQueryOpts(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var events []SessionEvent
	for rows.Next() {
		var (
			e  SessionEvent
			ts int64
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &ts, &e.UserID, &e.LevelID, &e.Action,
			&e.XP, &e.Questions, &e.FirstTry, &e.Mistakes, &e.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}
