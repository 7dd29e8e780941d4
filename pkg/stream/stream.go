// Package stream assembles text deltas from a chunked server-sent event
// stream produced by OpenAI-compatible chat and completion endpoints.
//
// An [Assembler] buffers raw bytes, acts only on complete lines and extracts
// the text fragment of every "data: " event according to the endpoint kind.
// Malformed frames are logged and skipped; they never end the stream.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/germanamz/promptly/pkg/providers/openai"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
	readSize     = 4096
)

// Status is the assembler's lifecycle state. Done and Failed are terminal.
type Status int

const (
	Reading Status = iota
	Done
	Failed
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "reading"
	}
}

// EventKind identifies what an Event carries.
type EventKind int

const (
	// EventDelta carries a non-empty text fragment.
	EventDelta EventKind = iota
	// EventDone marks a graceful end of the stream.
	EventDone
	// EventFailed marks a read error or cancellation; Err is set.
	EventFailed
)

// Event is emitted by Run for every delta and once for the terminal state.
type Event struct {
	Kind  EventKind
	Delta string
	Err   error
}

// Assembler turns stream chunks into deltas. It is not safe for concurrent
// use; one assembler serves one response.
type Assembler struct {
	kind     openai.Kind
	logger   *slog.Logger
	pending  []byte
	status   Status
	received bool
}

// New creates an assembler for responses of the given endpoint kind.
// A nil logger discards log output.
func New(kind openai.Kind, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Assembler{kind: kind, logger: logger}
}

// Status returns the current lifecycle state.
func (a *Assembler) Status() Status { return a.status }

// Received reports whether at least one non-empty delta was extracted.
func (a *Assembler) Received() bool { return a.received }

// Feed appends chunk to the line buffer and returns the deltas of every line
// the chunk completed, in order. Bytes after the last newline stay buffered.
func (a *Assembler) Feed(chunk []byte) []string {
	if a.status != Reading {
		return nil
	}

	a.pending = append(a.pending, chunk...)

	var deltas []string
	for {
		i := bytes.IndexByte(a.pending, '\n')
		if i < 0 {
			break
		}

		line := a.pending[:i]
		a.pending = a.pending[i+1:]

		if d := a.line(line); d != "" {
			deltas = append(deltas, d)
		}
	}

	return deltas
}

// Flush processes a trailing line that was never newline-terminated.
func (a *Assembler) Flush() []string {
	if a.status != Reading || len(a.pending) == 0 {
		return nil
	}

	line := a.pending
	a.pending = nil

	if d := a.line(line); d != "" {
		return []string{d}
	}

	return nil
}

// Run reads r chunk by chunk until EOF, a read error or ctx cancellation.
// Every delta is emitted as soon as its line completes, followed by exactly
// one EventDone or EventFailed. It returns the terminal status. Calling Run on
// an assembler that already finished returns its status without emitting.
func (a *Assembler) Run(ctx context.Context, r io.Reader, emit func(Event)) Status {
	if a.status != Reading {
		return a.status
	}

	buf := make([]byte, readSize)
	for {
		if err := ctx.Err(); err != nil {
			return a.fail(err, emit)
		}

		n, err := r.Read(buf)
		if n > 0 {
			a.emitDeltas(a.Feed(buf[:n]), emit)
		}

		switch {
		case errors.Is(err, io.EOF):
			a.emitDeltas(a.Flush(), emit)
			a.status = Done
			emit(Event{Kind: EventDone})

			return a.status
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}

			return a.fail(err, emit)
		}
	}
}

func (a *Assembler) fail(err error, emit func(Event)) Status {
	a.status = Failed
	a.logger.Warn("stream failed", "kind", a.kind, "error", err)
	emit(Event{Kind: EventFailed, Err: err})

	return a.status
}

func (a *Assembler) emitDeltas(deltas []string, emit func(Event)) {
	for _, d := range deltas {
		emit(Event{Kind: EventDelta, Delta: d})
	}
}

// line extracts the delta carried by a single complete line.
func (a *Assembler) line(raw []byte) string {
	raw = bytes.TrimSuffix(raw, []byte("\r"))

	payload, ok := bytes.CutPrefix(raw, []byte(dataPrefix))
	if !ok {
		return ""
	}

	if string(payload) == doneSentinel {
		return ""
	}

	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		a.logger.Warn("skipping malformed stream frame", "kind", a.kind, "frame", string(payload), "error", err)
		return ""
	}

	d := f.delta(a.kind)
	if d != "" {
		a.received = true
	}

	return d
}

// frame covers both response schemas; only the fields for the active kind
// are read.
type frame struct {
	Choices []struct {
		Text  string `json:"text"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (f frame) delta(kind openai.Kind) string {
	if len(f.Choices) == 0 {
		return ""
	}

	if kind == openai.KindCompletion {
		return f.Choices[0].Text
	}

	return f.Choices[0].Delta.Content
}
