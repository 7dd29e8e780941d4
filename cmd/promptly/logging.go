package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/germanamz/promptly/pkg/engine"
	"github.com/germanamz/promptly/pkg/promptdir"
)

// newLogger opens the log file named by cfg (the project log by default) and
// returns a text logger writing to it. The TUI owns the terminal, so nothing
// is logged to stderr.
func newLogger(cfg engine.Config, d promptdir.Dir) (*slog.Logger, io.Closer, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}

	path := cfg.Log.File
	if path == "" {
		path = d.LogPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path is caller-provided configuration
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))

	return logger, f, nil
}
