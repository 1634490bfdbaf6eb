package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/chemquest/internal/config"
	"github.com/abhisek/chemquest/internal/content"
	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/game"
	"github.com/abhisek/chemquest/internal/llm"
	"github.com/abhisek/chemquest/internal/logging"
	"github.com/abhisek/chemquest/internal/store"
	"github.com/abhisek/chemquest/internal/tutor"
)

const closeTimeout = 5 * time.Second

// env holds everything a command needs. Close releases it in reverse
// order of acquisition.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *store.Store
	registry *curriculum.Registry
	provider llm.Provider
	game     *game.Game

	closers []func(context.Context) error
}

// newEnv loads configuration and builds the game. The LLM provider and
// the remote question bank are optional; when they are unavailable the
// game runs locally.
func newEnv(cmd *cobra.Command) (*env, error) {
	e, err := newStoreEnv(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()

	if e.registry, err = loadRegistry(e.cfg); err != nil {
		e.Close()
		return nil, err
	}

	svc := e.contentService(ctx)

	if cfg, ok := llm.Resolve(); ok {
		p, err := llm.NewProvider(ctx, cfg, e.store.EventRepo(), e.logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		} else {
			e.provider = p
		}
	}

	opts := game.Options{
		Registry:   e.registry,
		Content:    svc,
		Profiles:   e.store.ProfileRepo(),
		Events:     e.store.EventRepo(),
		Privileged: e.cfg.Privileged,
		Logger:     e.logger,
	}
	if e.provider != nil {
		opts.Explainer = tutor.NewExplainer(e.provider)
	}
	e.game = game.New(opts)
	e.closers = append(e.closers, e.game.Close)
	return e, nil
}

// newStoreEnv loads configuration, logging and the store only.
func newStoreEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}
	e := &env{cfg: cfg, logger: logger}
	e.closers = append(e.closers, func(context.Context) error { return logCloser.Close() })

	st, err := openStore(cfg)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.store = st
	e.closers = append(e.closers, func(context.Context) error { return st.Close() })
	return e, nil
}

func (e *env) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](ctx); err != nil && e.logger != nil {
			e.logger.Warn("shutdown step failed", "error", err)
		}
	}
	e.closers = nil
}

// contentService connects the remote bank when one is configured. A
// failed connection is logged and the bundled banks are used instead.
func (e *env) contentService(ctx context.Context) *content.Service {
	mc := e.cfg.Content.Mongo
	if mc.URI == "" {
		return content.NewService(nil, e.cfg.Content.Timeout, e.logger)
	}

	connectCtx, cancel := context.WithTimeout(ctx, e.cfg.Content.Timeout)
	defer cancel()
	mongoSrc, err := content.NewMongoSource(connectCtx, mc.URI, mc.Database, mc.Collection)
	if err != nil {
		e.logger.Warn("remote question bank unavailable", "error", err)
		fmt.Fprintln(os.Stderr, "Remote question bank unavailable; using bundled levels.")
		return content.NewService(nil, e.cfg.Content.Timeout, e.logger)
	}
	e.closers = append(e.closers, mongoSrc.Close)

	var src content.Source = mongoSrc
	if rc := e.cfg.Content.Redis; rc.Addr != "" {
		cache := content.NewRedisCache(rc.Addr, rc.Password, rc.DB)
		e.closers = append(e.closers, func(context.Context) error { return cache.Close() })
		src = &content.CachedSource{Inner: mongoSrc, Cache: cache, TTL: rc.TTL, Logger: e.logger}
	}
	return content.NewService(src, e.cfg.Content.Timeout, e.logger)
}

// loadConfig resolves the config file and environment, then applies the
// persistent flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Database = config.DatabaseConfig{Driver: store.DriverSQLite, DSN: db}
	}
	if dir, _ := cmd.Flags().GetString("content"); dir != "" {
		cfg.Content.Dir = dir
	}
	if user, _ := cmd.Flags().GetString("user"); user != "" {
		cfg.UserID = user
	}
	return cfg, nil
}

// openStore opens the configured database. An empty SQLite DSN uses the
// per-user data directory.
func openStore(cfg config.Config) (*store.Store, error) {
	dsn := cfg.Database.DSN
	if cfg.Database.Driver == store.DriverSQLite {
		var err error
		if dsn == "" {
			if dsn, err = store.DefaultDBPath(); err != nil {
				return nil, fmt.Errorf("resolve DB path: %w", err)
			}
		} else if err = store.EnsureDir(dsn); err != nil {
			return nil, fmt.Errorf("create DB dir: %w", err)
		}
	}
	st, err := store.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func loadRegistry(cfg config.Config) (*curriculum.Registry, error) {
	if cfg.Content.Dir != "" {
		reg, err := curriculum.LoadDir(cfg.Content.Dir)
		if err != nil {
			return nil, fmt.Errorf("load levels from %s: %w", cfg.Content.Dir, err)
		}
		return reg, nil
	}
	return curriculum.Default()
}
