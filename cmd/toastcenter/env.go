package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nhle/toastcenter/internal/center"
	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/priority"
	"github.com/nhle/toastcenter/internal/store"
)

// env is what every data command works on.
type env struct {
	cfg    *model.AppConfig
	store  *store.SQLiteStore
	svc    *center.Service
	logger *slog.Logger

	closers []io.Closer
}

// openEnv opens the user's database and builds the center service. Logs
// go to w.
func openEnv(ctx context.Context, cfg *model.AppConfig, w io.Writer) (*env, error) {
	logger := newLogger(w, cfg.Log.Level)
	slog.SetDefault(logger)

	s, err := store.OpenForUser(cfg.Storage.DataDir, cfg.User.ID)
	if err != nil {
		return nil, fmt.Errorf("opening database for %s: %w", cfg.User.ID, err)
	}
	if _, err := s.EnsureDefaultSpace(ctx, cfg.User.ID, cfg.Spaces.DefaultName); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating default space: %w", err)
	}

	dnd := priority.NewDND(cfg.DND.Enabled, cfg.DND.Threshold)
	return &env{
		cfg:     cfg,
		store:   s,
		svc:     center.NewService(s, cfg.User.ID, dnd, logger),
		logger:  logger,
		closers: []io.Closer{s},
	}, nil
}

// Close releases everything the env opened, newest first.
func (e *env) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openLogFile opens <data_dir>/toastcenter.log for appending. The TUI owns
// the terminal, so logs cannot go to stderr while it runs.
func openLogFile(dataDir string) (*os.File, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}
	path := filepath.Join(dataDir, "toastcenter.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return f, nil
}
