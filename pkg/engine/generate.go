package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/germanamz/promptly/pkg/chats/tagged"
	"github.com/germanamz/promptly/pkg/providers/openai"
	"github.com/germanamz/promptly/pkg/stream"
	"github.com/google/uuid"
)

// closingTurn is appended after a chat reply so the buffer is ready for the
// next turn.
const closingTurn = "\n<|im_end|>\n\n"

// Generation is one in-flight request. Stream runs the HTTP exchange and may
// run on any goroutine; Apply and Finish mutate the buffer and belong on the
// goroutine that owns the editor.
type Generation struct {
	ID   string
	Kind openai.Kind

	engine  *Engine
	adapter *openai.Adapter
	body    any
	logger  *slog.Logger
	started time.Time

	once   sync.Once
	deltas int
	err    error
}

// Prepare starts a generation from the current state. It returns nil, doing
// nothing, when a generation is already in flight.
//
// For the chat endpoint the buffer is rewritten to the normalized
// conversation followed by a fresh assistant opener, so the reply streams
// into the right place.
func (e *Engine) Prepare() *Generation {
	if !e.state.BeginLoading() {
		return nil
	}

	snap := e.state.Snapshot()
	kind := openai.KindFor(snap.TokenizerURL)

	g := &Generation{
		ID:      uuid.NewString(),
		Kind:    kind,
		engine:  e,
		adapter: openai.New(snap.APIBaseURL, snap.Meta.APIKey, e.client),
		started: time.Now(),
	}
	g.logger = e.logger.With("generation", g.ID, "kind", kind)

	switch kind {
	case openai.KindCompletion:
		g.body = openai.BuildCompletionRequest(snap.Model, snap.Prompt, snap.Params)
	default:
		msgs := tagged.Parse(snap.Prompt)
		g.body = openai.BuildChatRequest(snap.Model, msgs, snap.Params)
		e.state.ReplaceBuffer(tagged.Format(msgs) + "\n\n" + tagged.AssistantOpener)
	}

	g.logger.Info("generation started", "model", snap.Model, "base_url", snap.APIBaseURL)
	e.events.Publish(Event{Kind: EventGenerationStart, Generation: g.ID, Timestamp: g.started})

	return g
}

// Stream posts the request and feeds the response through the assembler,
// calling emit for every delta and exactly once with a terminal event. A
// transport failure is reported as a single EventFailed. Stream never
// touches the buffer.
func (g *Generation) Stream(ctx context.Context, emit func(stream.Event)) stream.Status {
	body, err := g.adapter.Stream(ctx, g.Kind, g.body)
	if err != nil {
		emit(stream.Event{Kind: stream.EventFailed, Err: err})
		return stream.Failed
	}
	defer func() { _ = body.Close() }()

	if info := g.adapter.LastRateLimitInfo(); info != nil {
		g.engine.rateLimit.Store(info)
	}

	return stream.New(g.Kind, g.logger).Run(ctx, body, emit)
}

// Apply applies one assembler event to the buffer. Deltas are appended at the
// end; terminal events finish the generation.
func (g *Generation) Apply(ev stream.Event) {
	switch ev.Kind {
	case stream.EventDelta:
		if ev.Delta == "" {
			return
		}
		g.deltas++
		g.engine.state.AppendOutput(ev.Delta)
	case stream.EventDone:
		g.Finish(nil)
	case stream.EventFailed:
		g.Finish(ev.Err)
	}
}

// Run streams synchronously, applying every event on the calling goroutine.
// It returns the transport error, if any.
func (g *Generation) Run(ctx context.Context) error {
	g.Stream(ctx, g.Apply)
	return g.Err()
}

// Finish closes the generation: a chat reply that produced content gets a
// closing end-of-turn marker, and the loading flag is cleared. Only the first
// call has any effect.
func (g *Generation) Finish(err error) {
	g.once.Do(func() {
		g.err = err

		if err == nil && g.Kind == openai.KindChat && g.deltas > 0 {
			g.engine.state.AppendOutput(closingTurn)
		}

		g.engine.state.EndLoading()

		elapsed := time.Since(g.started)
		if err != nil {
			g.logger.Error("generation failed", "error", err, "duration", elapsed)
			g.engine.events.Publish(Event{Kind: EventError, Generation: g.ID, Data: err})

			return
		}

		g.logger.Info("generation finished", "deltas", g.deltas, "duration", elapsed)
		g.engine.events.Publish(Event{
			Kind:       EventGenerationEnd,
			Generation: g.ID,
			Data:       GenerationSummary{Kind: g.Kind.String(), Deltas: g.deltas, Duration: elapsed},
		})
	})
}

// Err returns the error the generation finished with.
func (g *Generation) Err() error { return g.err }

// Deltas returns the number of non-empty deltas applied so far.
func (g *Generation) Deltas() int { return g.deltas }
