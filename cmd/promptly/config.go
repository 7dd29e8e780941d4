package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/germanamz/promptly/pkg/engine"
	"github.com/germanamz/promptly/pkg/promptdir"
	"github.com/germanamz/promptly/pkg/storage"
)

// environment is everything a command needs once flags are parsed.
type environment struct {
	dir    promptdir.Dir
	cfg    engine.Config
	logger *slog.Logger
	engine *engine.Engine
	logOut io.Closer
}

// setup loads .env and the config, prepares the project directory, opens the
// log file and builds the engine.
func setup(opts options) (*environment, error) {
	if err := loadDotEnv(opts.envFile); err != nil {
		return nil, err
	}

	d := promptdir.New(opts.dir)

	cfg, err := resolveConfig(opts.configPath, d)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := promptdir.EnsureStructure(d); err != nil {
		return nil, err
	}

	logger, logOut, err := newLogger(cfg, d)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(cfg, logger)
	if err != nil {
		_ = logOut.Close()
		return nil, err
	}

	return &environment{dir: d, cfg: cfg, logger: logger, engine: eng, logOut: logOut}, nil
}

func (e *environment) close() {
	if err := e.engine.Close(); err != nil {
		e.logger.Error("closing engine", "error", err)
	}
	_ = e.logOut.Close()
}

// resolveConfig loads the config in order: explicit path, .promptly/config.yaml,
// .promptly/config.toml, built-in defaults. Empty storage and log paths are
// filled in from the project directory.
func resolveConfig(explicit string, d promptdir.Dir) (engine.Config, error) {
	path := explicit
	if path == "" {
		path = d.FindConfig()
	}

	cfg := engine.DefaultConfig()
	if path != "" {
		loaded, err := engine.LoadConfig(path)
		if err != nil {
			return engine.Config{}, err
		}
		cfg = loaded
	}

	if cfg.Storage.Path == "" {
		switch storage.Backend(cfg.Storage.Backend) {
		case storage.BackendSQLite:
			cfg.Storage.Path = d.SQLitePath()
		case storage.BackendFile:
			cfg.Storage.Path = d.JSONStatePath()
		}
	}

	if cfg.Log.File == "" {
		cfg.Log.File = d.LogPath()
	}

	return cfg, nil
}

// defaultConfigYAML renders the config written by "promptly init". The API
// key refers to the environment so the file can be committed.
func defaultConfigYAML() ([]byte, error) {
	cfg := engine.DefaultConfig()
	cfg.APIKey = "${OPENAI_API_KEY}"

	data, err := cfg.YAML()
	if err != nil {
		return nil, fmt.Errorf("render default config: %w", err)
	}

	return data, nil
}
