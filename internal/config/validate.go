package config

import (
	"fmt"
	"strings"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks a normalized config.
func Validate(cfg *Config) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if strings.ContainsAny(cfg.UserID, " \t\n") {
		add("user_id", "must not contain whitespace")
	}

	switch cfg.Database.Driver {
	case "sqlite":
	case "postgres":
		if cfg.Database.DSN == "" {
			add("database.dsn", "is required for the postgres driver")
		}
	default:
		add("database.driver", fmt.Sprintf("unsupported driver %q", cfg.Database.Driver))
	}

	if cfg.Content.Timeout < 0 {
		add("content.timeout", "must not be negative")
	}
	if cfg.Content.Redis.Addr != "" && cfg.Content.Mongo.URI == "" {
		add("content.redis.addr", "requires content.mongo.uri")
	}
	if cfg.Content.Redis.TTL < 0 {
		add("content.redis.ttl", "must not be negative")
	}
	if cfg.Content.Redis.DB < 0 {
		add("content.redis.db", "must not be negative")
	}
	if m := cfg.Content.Mongo; m.URI != "" &&
		!strings.HasPrefix(m.URI, "mongodb://") && !strings.HasPrefix(m.URI, "mongodb+srv://") {
		add("content.mongo.uri", "must start with mongodb:// or mongodb+srv://")
	}

	if !logLevels[cfg.Log.Level] {
		add("log.level", fmt.Sprintf("unknown level %q", cfg.Log.Level))
	}
	if cfg.Log.MaxSizeMB < 0 {
		add("log.max_size_mb", "must not be negative")
	}
	if cfg.Log.MaxBackups < 0 {
		add("log.max_backups", "must not be negative")
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
