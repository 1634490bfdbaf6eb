// Package config loads chemquest's settings from an optional YAML file,
// a .env file and CHEMQUEST_* environment variables, in increasing order
// of precedence.
package config

import "time"

// Config is the resolved application configuration.
type Config struct {
	// UserID names the local profile. Default "local".
	UserID string `yaml:"user_id"`

	// Privileged unlocks the administrative quiz shortcuts.
	Privileged bool `yaml:"privileged"`

	Database DatabaseConfig `yaml:"database"`
	Content  ContentConfig  `yaml:"content"`
	Log      LogConfig      `yaml:"log"`
	API      APIConfig      `yaml:"api"`
}

// DatabaseConfig selects the profile store.
type DatabaseConfig struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string `yaml:"driver"`
	// DSN is a file path for sqlite or a libpq connection string. An
	// empty sqlite DSN uses the per-user data directory.
	DSN string `yaml:"dsn"`
}

// ContentConfig controls where level banks come from.
type ContentConfig struct {
	// Dir replaces the embedded curriculum with level files on disk.
	Dir string `yaml:"dir"`

	Mongo MongoConfig `yaml:"mongo"`
	Redis RedisConfig `yaml:"redis"`

	// Timeout bounds one remote hydration.
	Timeout time.Duration `yaml:"timeout"`
}

// MongoConfig points at the remote question bank. An empty URI disables
// remote hydration.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// RedisConfig enables the bank cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	// Path defaults to chemquest.log in the data directory.
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// APIConfig configures `chemquest serve`.
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// Defaults.
const (
	DefaultUserID          = "local"
	DefaultMongoDatabase   = "chemquest"
	DefaultMongoCollection = "questions"
	DefaultLogLevel        = "info"
	DefaultAPIAddr         = ":8080"
	DefaultContentTimeout  = 5 * time.Second
	DefaultCacheTTL        = 10 * time.Minute
	DefaultLogMaxSizeMB    = 5
	DefaultLogMaxBackups   = 3
)

// Default returns a normalized Config with no file or environment input.
func Default() Config {
	var cfg Config
	Normalize(&cfg)
	return cfg
}

// RemoteContent reports whether a remote question bank is configured.
func (c Config) RemoteContent() bool {
	return c.Content.Mongo.URI != ""
}
