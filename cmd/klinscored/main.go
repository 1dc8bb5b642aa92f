// Command klinscored is the KlinScore API service.
// It serves the score library, calculations, the calculation history
// and a health check.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jeffcwolf/klinscore/internal/api"
	"github.com/jeffcwolf/klinscore/internal/cache"
	"github.com/jeffcwolf/klinscore/internal/history"
	"github.com/jeffcwolf/klinscore/internal/platform"
	"github.com/jeffcwolf/klinscore/pkg/config"
	"github.com/jeffcwolf/klinscore/pkg/library"
	"github.com/jeffcwolf/klinscore/scores"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envOrDefault("KLINSCORE_CONFIG", "/etc/klinscore/config.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("klinscored failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		lib *library.Library
		err error
	)
	if cfg.Scores.Dir != "" {
		lib, err = library.Load(cfg.Scores.Dir, logger)
	} else {
		lib, err = library.LoadFS(scores.FS, ".", logger)
	}
	if err != nil {
		return fmt.Errorf("load scores: %w", err)
	}
	logger.Info("score library loaded", "count", lib.Count())

	db, err := platform.OpenDB(cfg.History.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := platform.AutoMigrate(db, cfg.History.Database.Driver); err != nil {
		return err
	}

	storage, err := history.NewStorage(ctx, cfg.History.Storage)
	if err != nil {
		return err
	}

	recordCache, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Warn("record cache disabled", "error", err)
		recordCache = nil
	} else {
		defer recordCache.Close()
	}

	historySvc := history.NewService(
		history.NewStore(db, cfg.History.Database.Driver),
		storage, recordCache, cache.TTL(cfg.Cache), logger,
	)

	handler := api.NewHandler(lib, historySvc, logger)
	handler.SetDefaultLanguage(cfg.Language)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler.Router(cfg.Server.APIKey),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting klinscored", "port", cfg.Server.Port,
			"storage", cfg.History.Storage.Backend, "database", cfg.History.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
