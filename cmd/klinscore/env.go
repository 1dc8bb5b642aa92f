package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jeffcwolf/klinscore/internal/cache"
	"github.com/jeffcwolf/klinscore/internal/history"
	"github.com/jeffcwolf/klinscore/internal/platform"
	"github.com/jeffcwolf/klinscore/pkg/config"
	"github.com/jeffcwolf/klinscore/pkg/library"
	"github.com/jeffcwolf/klinscore/scores"
)

// globalOpts holds the persistent root flags.
type globalOpts struct {
	configPath string
	scoresDir  string
}

// loadConfig resolves the config file (flag, then search from the working
// directory), applies KLINSCORE_* overrides and the --scores-dir flag.
func loadConfig(g *globalOpts) (*config.Config, error) {
	path := g.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err == nil {
			path = config.FindConfigFile(wd)
		}
	}

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.Scores.Dir = firstNonEmpty(g.scoresDir, cfg.Scores.Dir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadLibrary loads the configured score directory, or the built-in scores.
func loadLibrary(cfg *config.Config) (*library.Library, error) {
	logger := stderrLogger()
	if cfg.Scores.Dir != "" {
		return library.Load(cfg.Scores.Dir, logger)
	}
	return library.LoadFS(scores.FS, ".", logger)
}

func loadEnv(g *globalOpts) (*config.Config, *library.Library, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, nil, err
	}
	lib, err := loadLibrary(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("loading scores: %w", err)
	}
	return cfg, lib, nil
}

// openHistory wires the history service from config. The returned func
// releases the database and cache.
func openHistory(ctx context.Context, cfg *config.Config) (*history.Service, func(), error) {
	db, err := platform.OpenDB(cfg.History.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := platform.AutoMigrate(db, cfg.History.Database.Driver); err != nil {
		db.Close()
		return nil, nil, err
	}

	storage, err := history.NewStorage(ctx, cfg.History.Storage)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: record cache disabled: %v\n", err)
		c = nil
	}

	svc := history.NewService(history.NewStore(db, cfg.History.Database.Driver), storage, c, cache.TTL(cfg.Cache), nil)
	closeFn := func() {
		if c != nil {
			_ = c.Close()
		}
		db.Close()
	}
	return svc, closeFn, nil
}

// stderrLogger reports skipped definition files and other warnings.
func stderrLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
