package engine

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/germanamz/promptly/pkg/modeladapter"
	"github.com/germanamz/promptly/pkg/state"
	"github.com/germanamz/promptly/pkg/storage"
)

// Engine is the composition root. It owns the store, the state engine, the
// HTTP client and the event bus.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	store  storage.Store
	state  *state.Engine
	events *EventBus
	client *http.Client

	rateLimit atomic.Pointer[modeladapter.RateLimitInfo]
}

// New validates cfg, opens the configured store and loads the client state
// (persisted settings over cfg.Defaults). The config credential is used only
// when none was persisted.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := storage.Open(storage.Backend(cfg.Storage.Backend), cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e, err := NewWithStore(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return e, nil
}

// NewWithStore is New with a caller-provided store. The engine takes
// ownership of store and closes it in Close.
func NewWithStore(cfg Config, store storage.Store, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	timeout, _ := cfg.Timeout() // validated above

	e := &Engine{
		cfg:    cfg,
		logger: logger,
		store:  store,
		state:  state.New(store, cfg.Defaults(), logger),
		events: NewEventBus(),
		client: &http.Client{Timeout: timeout},
	}

	if cfg.APIKey != "" {
		e.state.UseAPIKey(cfg.APIKey)
	}

	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// State returns the client state engine.
func (e *Engine) State() *state.Engine { return e.state }

// Events returns the engine's event bus.
func (e *Engine) Events() *EventBus { return e.events }

// RateLimit returns the rate limit info seen on the latest response, or nil.
func (e *Engine) RateLimit() *modeladapter.RateLimitInfo { return e.rateLimit.Load() }

// ShareURL returns the share link for the current state on the configured
// share base URL.
func (e *Engine) ShareURL() (string, error) {
	return e.state.ShareURL(e.cfg.ShareBaseURL)
}

// Close closes the event bus and the store.
func (e *Engine) Close() error {
	e.events.Close()

	if err := e.store.Close(); err != nil {
		return fmt.Errorf("engine: close: %w", err)
	}

	return nil
}
