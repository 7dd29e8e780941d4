// Package state owns promptly's client state and keeps three sources in
// step: the persisted store, a settings payload carried by a share link, and
// the live editor buffer.
//
// The [Engine] is the single writer. Readers take a [Snapshot]; every change
// to the non-transient settings is written back to the store. The credential
// lives in its own store entry and never appears in the settings blob or a
// share link.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/germanamz/promptly/pkg/settings"
	"github.com/germanamz/promptly/pkg/storage"
)

// Store keys.
const (
	SettingsKey = "promptly.settings"
	APIKeyKey   = "promptly.apiKey"
)

// ShareParam is the query parameter that carries shared settings.
const ShareParam = "state"

// Phase tracks how far the engine got in populating the editor.
type Phase int

const (
	// Pending: the share link has not been read yet.
	Pending Phase = iota
	// Pulled: the share link was read; the editor is not populated.
	Pulled
	// Completed: the editor holds the prompt.
	Completed
)

func (p Phase) String() string {
	switch p {
	case Pulled:
		return "pulled"
	case Completed:
		return "completed"
	default:
		return "pending"
	}
}

// Meta is transient state. It is never persisted or shared.
type Meta struct {
	IsLoading      bool
	Initialization Phase
	APIKey         string
}

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	settings.Settings
	Meta Meta
}

// Engine owns the client state. It is safe for concurrent use, though the
// mounted editor is only touched while the engine's lock is held.
type Engine struct {
	mu       sync.Mutex
	store    storage.Store
	logger   *slog.Logger
	settings settings.Settings
	meta     Meta
	editor   Editor
}

// New loads the persisted settings from store, falling back to defaults when
// the entry is missing or undecodable, and reads the credential from its own
// entry. The engine starts in Pending and not loading.
func New(store storage.Store, defaults settings.Settings, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		store:    store,
		logger:   logger,
		settings: defaults,
	}

	if raw, err := store.Get(SettingsKey); err == nil {
		var p settings.Partial
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			logger.Warn("ignoring undecodable persisted settings", "error", err)
		} else {
			e.settings = p.Apply(defaults)
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		logger.Warn("reading persisted settings", "error", err)
	}

	if key, err := store.Get(APIKeyKey); err == nil {
		e.meta.APIKey = key
	} else if !errors.Is(err, storage.ErrNotFound) {
		logger.Warn("reading persisted credential", "error", err)
	}

	return e
}

// Snapshot returns a copy of the current state. The prompt is the live editor
// buffer when one is mounted and populated.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.settings
	s.Prompt = e.livePrompt()

	return Snapshot{Settings: s, Meta: e.meta}
}

// Pull reads the share payload from pageURL and moves Pending to Pulled. A
// decodable payload is shallow-merged over the current settings; a missing
// or broken one leaves them untouched. Only the first call has any effect.
// If an editor is already mounted it is populated right away.
func (e *Engine) Pull(pageURL string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.meta.Initialization != Pending {
		return
	}

	if p, ok := e.sharedPayload(pageURL); ok {
		e.setSettings(p.Apply(e.settings))
	}

	e.meta.Initialization = Pulled
	e.populate()
}

func (e *Engine) sharedPayload(pageURL string) (settings.Partial, bool) {
	if pageURL == "" {
		return settings.Partial{}, false
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		e.logger.Warn("ignoring unparseable page URL", "error", err)
		return settings.Partial{}, false
	}

	raw := u.Query().Get(ShareParam)
	if raw == "" {
		return settings.Partial{}, false
	}

	p, err := settings.DecodeShare(raw)
	if err != nil {
		e.logger.Warn("ignoring undecodable shared state", "error", err)
		return settings.Partial{}, false
	}

	return p, true
}

// Mount attaches ed and, once the share link has been pulled, fills it with
// the prompt and moves to Completed.
func (e *Engine) Mount(ed Editor) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.editor = ed
	e.populate()
}

// populate fills the editor when the engine is Pulled. Must be called while
// e.mu is held.
func (e *Engine) populate() {
	if e.editor == nil || e.meta.Initialization != Pulled {
		return
	}

	e.editor.SetValue(e.settings.Prompt)
	e.meta.Initialization = Completed
}

// Unmount releases the editor. The buffer is captured into the prompt first,
// and a Completed engine reverts to Pulled so the next Mount re-populates.
func (e *Engine) Unmount() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.editor == nil {
		return
	}

	e.setPrompt(e.livePrompt())
	e.editor = nil

	if e.meta.Initialization == Completed {
		e.meta.Initialization = Pulled
	}
}

// EditorChanged copies the editor buffer into the prompt. Calls before the
// editor was populated are ignored.
func (e *Engine) EditorChanged() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.editor == nil || e.meta.Initialization != Completed {
		return
	}

	e.setPrompt(e.editor.Value())
}

// Update applies fn to a copy of the settings and stores the result.
func (e *Engine) Update(fn func(*settings.Settings)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.settings
	next.Prompt = e.livePrompt()
	fn(&next)

	if next.Prompt != e.livePrompt() && e.mounted() {
		e.editor.SetValue(next.Prompt)
	}

	e.setSettings(next)
}

// SetAPIKey stores the credential in its own entry. An empty key removes it.
func (e *Engine) SetAPIKey(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if key == "" {
		err = e.store.Delete(APIKeyKey)
	} else {
		err = e.store.Set(APIKeyKey, key)
	}

	if err != nil {
		return fmt.Errorf("state: save credential: %w", err)
	}

	e.meta.APIKey = key

	return nil
}

// UseAPIKey sets the in-memory credential without persisting it. It does
// nothing when a credential is already known.
func (e *Engine) UseAPIKey(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.meta.APIKey == "" {
		e.meta.APIKey = key
	}
}

// ReplaceBuffer sets the whole prompt and, with an editor mounted, rewrites
// the buffer and reveals its last line.
func (e *Engine) ReplaceBuffer(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mounted() {
		e.editor.SetValue(text)
		e.editor.RevealLine(e.editor.LineCount())
	}

	e.setPrompt(text)
}

// AppendOutput adds delta at the end of the buffer and reveals the new last
// line.
func (e *Engine) AppendOutput(delta string) {
	if delta == "" {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mounted() {
		e.editor.Append(delta)
		e.editor.RevealLine(e.editor.LineCount())
		e.setPrompt(e.editor.Value())

		return
	}

	e.setPrompt(e.settings.Prompt + delta)
}

// BeginLoading marks a generation as in flight. It returns false, changing
// nothing, when one already is.
func (e *Engine) BeginLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.meta.IsLoading {
		return false
	}

	e.meta.IsLoading = true

	return true
}

// EndLoading clears the in-flight flag.
func (e *Engine) EndLoading() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.meta.IsLoading = false
}

// ShareURL returns base with the share parameter set to the current settings
// and the live prompt. The credential is never included.
func (e *Engine) ShareURL(base string) (string, error) {
	e.mu.Lock()
	s := e.settings
	s.Prompt = e.livePrompt()
	e.mu.Unlock()

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("state: share url: %w", err)
	}

	q := u.Query()
	q.Set(ShareParam, settings.EncodeShare(s))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// mounted reports whether a populated editor is attached. Must be called
// while e.mu is held.
func (e *Engine) mounted() bool {
	return e.editor != nil && e.meta.Initialization == Completed
}

// livePrompt returns the editor buffer when mounted, else the stored prompt.
// Must be called while e.mu is held.
func (e *Engine) livePrompt() string {
	if e.mounted() {
		return e.editor.Value()
	}

	return e.settings.Prompt
}

func (e *Engine) setPrompt(p string) {
	next := e.settings
	next.Prompt = p
	e.setSettings(next)
}

// setSettings replaces the settings and persists them when they changed.
// Must be called while e.mu is held.
func (e *Engine) setSettings(next settings.Settings) {
	if next == e.settings {
		return
	}

	e.settings = next

	data, err := json.Marshal(next)
	if err != nil {
		e.logger.Error("encoding settings", "error", err)
		return
	}

	if err := e.store.Set(SettingsKey, string(data)); err != nil {
		e.logger.Error("persisting settings", "error", err)
	}
}
