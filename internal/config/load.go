package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "CHEMQUEST_"

// Load resolves the configuration. path is the --config flag value; when
// empty, CHEMQUEST_CONFIG and then the XDG default are tried, and a
// missing default file is not an error. A .env file in the working
// directory is read first and never overrides variables already set.
func Load(path string) (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	var cfg Config
	file, explicit := resolvePath(path)
	if file != "" {
		data, err := os.ReadFile(file)
		switch {
		case err == nil:
			if cfg, err = Parse(data); err != nil {
				return Config{}, fmt.Errorf("%s: %w", file, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads the named .env files if they exist.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Parse decodes a YAML config document. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/chemquest/config.yaml, falling
// back to ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "chemquest", "config.yaml")
}

func resolvePath(flag string) (string, bool) {
	if flag != "" {
		return flag, true
	}
	if p := os.Getenv(envPrefix + "CONFIG"); p != "" {
		return p, true
	}
	return DefaultPath(), false
}

// applyEnv overlays CHEMQUEST_* variables. Malformed values are errors
// rather than silently ignored.
func applyEnv(cfg *Config) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	str := func(dst *string, key string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, key string) {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			add(envPrefix+key, fmt.Sprintf("invalid duration %q", v))
			return
		}
		*dst = d
	}
	num := func(dst *int, key string) {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			add(envPrefix+key, fmt.Sprintf("invalid integer %q", v))
			return
		}
		*dst = n
	}

	str(&cfg.UserID, "USER")
	if v, ok := os.LookupEnv(envPrefix + "PRIVILEGED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			add(envPrefix+"PRIVILEGED", fmt.Sprintf("invalid boolean %q", v))
		} else {
			cfg.Privileged = b
		}
	}

	str(&cfg.Database.Driver, "DB_DRIVER")
	str(&cfg.Database.DSN, "DB_DSN")

	str(&cfg.Content.Dir, "CONTENT_DIR")
	str(&cfg.Content.Mongo.URI, "MONGO_URI")
	str(&cfg.Content.Mongo.Database, "MONGO_DATABASE")
	str(&cfg.Content.Mongo.Collection, "MONGO_COLLECTION")
	str(&cfg.Content.Redis.Addr, "REDIS_ADDR")
	str(&cfg.Content.Redis.Password, "REDIS_PASSWORD")
	num(&cfg.Content.Redis.DB, "REDIS_DB")
	dur(&cfg.Content.Redis.TTL, "REDIS_TTL")
	dur(&cfg.Content.Timeout, "CONTENT_TIMEOUT")

	str(&cfg.Log.Path, "LOG_PATH")
	str(&cfg.Log.Level, "LOG_LEVEL")

	str(&cfg.API.Addr, "API_ADDR")

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// Normalize fills defaults for unset fields.
func Normalize(cfg *Config) {
	cfg.UserID = strings.TrimSpace(cfg.UserID)
	if cfg.UserID == "" {
		cfg.UserID = DefaultUserID
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Content.Mongo.URI != "" {
		if cfg.Content.Mongo.Database == "" {
			cfg.Content.Mongo.Database = DefaultMongoDatabase
		}
		if cfg.Content.Mongo.Collection == "" {
			cfg.Content.Mongo.Collection = DefaultMongoCollection
		}
	}
	if cfg.Content.Timeout == 0 {
		cfg.Content.Timeout = DefaultContentTimeout
	}
	if cfg.Content.Redis.TTL == 0 {
		cfg.Content.Redis.TTL = DefaultCacheTTL
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = DefaultLogMaxBackups
	}
	if cfg.API.Addr == "" {
		cfg.API.Addr = DefaultAPIAddr
	}
}
