package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
)

// Tables are created idempotently at open. Timestamps are stored as Unix
// milliseconds so both dialects scan them the same way.
var ddl = map[string][]string{
	dialect.SQLite: {
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS session_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sequence INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			user_id TEXT NOT NULL,
			level_id TEXT NOT NULL,
			action TEXT NOT NULL,
			xp INTEGER NOT NULL DEFAULT 0,
			questions INTEGER NOT NULL DEFAULT 0,
			first_try INTEGER NOT NULL DEFAULT 0,
			mistakes INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS session_events_user ON session_events (user_id, sequence)`,
		`CREATE TABLE IF NOT EXISTS llm_request_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sequence INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			purpose TEXT NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			request_body TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
	},
	dialect.Postgres: {
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS session_events (
			id BIGSERIAL PRIMARY KEY,
			sequence BIGINT NOT NULL,
			created_at BIGINT NOT NULL,
			user_id TEXT NOT NULL,
			level_id TEXT NOT NULL,
			action TEXT NOT NULL,
			xp INTEGER NOT NULL DEFAULT 0,
			questions INTEGER NOT NULL DEFAULT 0,
			first_try INTEGER NOT NULL DEFAULT 0,
			mistakes INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS session_events_user ON session_events (user_id, sequence)`,
		`CREATE TABLE IF NOT EXISTS llm_request_events (
			id BIGSERIAL PRIMARY KEY,
			sequence BIGINT NOT NULL,
			created_at BIGINT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			purpose TEXT NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			request_body TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
	},
}

func migrate(ctx context.Context, db *sql.DB, d string) error {
	stmts, ok := ddl[d]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", d)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
