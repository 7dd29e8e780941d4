package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/germanamz/promptly/pkg/engine"
	"github.com/germanamz/promptly/pkg/stream"
)

// streamEventMsg delivers one assembler event of a running generation.
type streamEventMsg struct {
	gen *engine.Generation
	ev  stream.Event
	ch  <-chan stream.Event
}

// engineEventMsg delivers a lifecycle event from the engine's bus.
type engineEventMsg struct {
	ev engine.Event
}

// tickMsg drives the loading spinner.
type tickMsg time.Time

// waitForStreamEvent reads the next event of g from ch. It yields nil once
// ch is closed.
func waitForStreamEvent(g *engine.Generation, ch <-chan stream.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return streamEventMsg{gen: g, ev: ev, ch: ch}
	}
}

// waitForEngineEvent reads the next event from sub. It yields nil once the
// subscription is closed.
func waitForEngineEvent(sub *engine.Subscription) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.C
		if !ok {
			return nil
		}
		return engineEventMsg{ev: ev}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
