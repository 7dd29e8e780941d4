// Package engine is the composition root that assembles promptly's
// components from configuration and exposes them through a
// frontend-agnostic API. Frontends (the TUI, the headless runner) talk to
// Engine and Generation, observe activity through an EventBus, and read or
// change client state through the state engine.
package engine
