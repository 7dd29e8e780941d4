package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/germanamz/promptly/pkg/engine"
	"github.com/germanamz/promptly/pkg/storage"
	"github.com/stretchr/testify/require"
)

const chatStream = "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"Hi \"}}]}\n\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"there\"}}]}\n\n" +
	"data: [DONE]\n\n"

func newTestEngine(t *testing.T, baseURL, prompt string) *engine.Engine {
	t.Helper()

	cfg := engine.DefaultConfig()
	cfg.APIBaseURL = baseURL
	cfg.APIKey = "sk-test"
	cfg.Prompt = prompt
	cfg.Storage.Backend = string(storage.BackendMemory)

	e, err := engine.NewWithStore(cfg, storage.NewMemory(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	return e
}

// send feeds msg to m and returns the updated model and command.
func send(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	am, ok := next.(appModel)
	require.True(t, ok, "Update returns an appModel")

	return am, cmd
}

// drive runs cmd and feeds every stream event it yields back into m until no
// command is left. Other messages are dropped.
func drive(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()

	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}

		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case streamEventMsg:
			var next tea.Cmd
			m, next = send(t, m, msg)
			queue = append(queue, next)
		}
	}

	return m
}

func keyRune(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func altKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true} }
