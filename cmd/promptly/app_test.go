package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/germanamz/promptly/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, baseURL, prompt string) appModel {
	t.Helper()

	eng := newTestEngine(t, baseURL, prompt)
	m := newAppModel(context.Background(), eng, "")
	_ = m.Init()

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	return m
}

func TestApp_InitPopulatesEditor(t *testing.T) {
	m := newTestApp(t, "http://127.0.0.1:1", "<|user|>\nhi")

	assert.Equal(t, "<|user|>\nhi", m.editor.Value())
	assert.Equal(t, state.Completed, m.eng.State().Snapshot().Meta.Initialization)
	assert.Equal(t, 1, m.status.messages)
	assert.Contains(t, m.View(), "1 turn")
}

func TestApp_InsertRoleBlock(t *testing.T) {
	m := newTestApp(t, "http://127.0.0.1:1", "")

	m, _ = send(t, m, altKey('u'))

	assert.Equal(t, "<|user|>\n\n<|im_end|>\n", m.editor.Value())
	assert.Equal(t, m.editor.Value(), m.eng.State().Snapshot().Prompt)
	assert.Equal(t, 0, m.status.messages, "an empty block is not a turn")

	m, _ = send(t, m, altKey('a'))
	assert.Equal(t, "<|user|>\n\n<|im_end|>\n<|assistant|>\n\n<|im_end|>\n", m.editor.Value())
	assert.Equal(t, 0, m.status.messages)
}

func TestApp_TypingIntoBlockCountsTurn(t *testing.T) {
	m := newTestApp(t, "http://127.0.0.1:1", "")

	m, _ = send(t, m, altKey('u'))
	require.Equal(t, 0, m.status.messages)

	m.editor.RevealLine(2)
	m, _ = send(t, m, keyRune('h'))
	m, _ = send(t, m, keyRune('i'))

	assert.Equal(t, "<|user|>\nhi\n<|im_end|>\n", m.editor.Value())
	assert.Equal(t, m.editor.Value(), m.eng.State().Snapshot().Prompt)
	assert.Equal(t, 1, m.status.messages)
	assert.Contains(t, m.View(), "1 turn")
}

func TestApp_MountKeepsTabsAndStreamedCRLF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"\\tx\\r\\n\"}}]}\n\ndata: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)

	prompt := "<|user|>\nfunc f() {\n\treturn\n}"
	m := newTestApp(t, srv.URL, prompt)
	assert.Equal(t, prompt, m.eng.State().Snapshot().Prompt)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	m = drive(t, m, cmd)

	assert.Contains(t, m.eng.State().Snapshot().Prompt, "<|assistant|>\n\tx\r\n")
	assert.Contains(t, m.eng.State().Snapshot().Prompt, "{\n\treturn\n}")
	assert.Equal(t, m.editor.Value(), m.eng.State().Snapshot().Prompt)
}

func TestApp_OverlongPromptIsReadOnly(t *testing.T) {
	prompt := "<|user|>\n" + strings.Repeat("x\n", maxEditorLines)
	m := newTestApp(t, "http://127.0.0.1:1", prompt)

	assert.Contains(t, m.View(), "read-only")

	m, _ = send(t, m, keyRune('y'))
	assert.Equal(t, prompt, m.eng.State().Snapshot().Prompt)
}

func TestApp_TypingUpdatesPrompt(t *testing.T) {
	m := newTestApp(t, "http://127.0.0.1:1", "")

	m, _ = send(t, m, keyRune('h'))
	m, _ = send(t, m, keyRune('i'))

	assert.Equal(t, "hi", m.eng.State().Snapshot().Prompt)
}

func TestApp_GenerateStreamsIntoEditor(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("x-ratelimit-remaining-requests", "9")
		_, _ = io.WriteString(w, chatStream)
	}))
	t.Cleanup(srv.Close)

	m := newTestApp(t, srv.URL, "<|user|>\nHello?")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	require.NotNil(t, cmd)
	assert.True(t, m.status.loading)
	assert.False(t, m.editor.enabled)
	assert.Equal(t, "<|user|>\nHello?\n<|im_end|>\n\n<|assistant|>\n", m.editor.Value())

	m = drive(t, m, cmd)

	assert.Equal(t, "<|user|>\nHello?\n<|im_end|>\n\n<|assistant|>\nHi there\n<|im_end|>\n\n", m.editor.Value())
	assert.Equal(t, m.editor.Value(), m.eng.State().Snapshot().Prompt)
	assert.False(t, m.status.loading)
	assert.Empty(t, m.status.err)
	assert.True(t, m.editor.enabled)
	assert.Nil(t, m.gen)
	assert.Equal(t, 2, m.status.messages)
	require.NotNil(t, m.status.rateLimit)
	assert.Equal(t, 9, m.status.rateLimit.Requests.Remaining)
	assert.Equal(t, int32(1), hits.Load())
}

func TestApp_GenerateFailureShowsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	m := newTestApp(t, srv.URL, "<|user|>\nhi")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	m = drive(t, m, cmd)

	assert.Contains(t, m.status.err, "HTTP 401")
	assert.False(t, m.status.loading)
	assert.Equal(t, "<|user|>\nhi\n<|im_end|>\n\n<|assistant|>\n", m.editor.Value())
	assert.Contains(t, m.status.View(), "error:")
}

func TestApp_GenerateWhileLoadingIsNoOp(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-release
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\ndata: [DONE]\n")
	}))
	t.Cleanup(srv.Close)

	m := newTestApp(t, srv.URL, "<|user|>\nhi")

	m, first := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	require.NotNil(t, first)
	require.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	m, second := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Nil(t, second)

	before := m.editor.Value()
	m, _ = send(t, m, keyRune('x'))
	m, _ = send(t, m, altKey('u'))
	assert.Equal(t, before, m.editor.Value(), "edits are blocked while loading")

	close(release)
	m = drive(t, m, first)

	assert.Equal(t, int32(1), hits.Load())
	assert.Contains(t, m.editor.Value(), "ok\n<|im_end|>\n\n")
	assert.False(t, m.status.loading)
}

func TestApp_Share(t *testing.T) {
	var copied string
	orig := writeClipboard
	t.Cleanup(func() { writeClipboard = orig })
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}

	m := newTestApp(t, "http://127.0.0.1:1", "<|user|>\nhi")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, "share link copied to clipboard", m.status.note)
	assert.Contains(t, copied, "https://promptly.local/?state=")
	assert.NotContains(t, copied, "sk-test")

	m, _ = send(t, m, keyRune('!'))
	assert.Empty(t, m.status.note, "the note clears on the next key")
}

func TestApp_ShareWithoutClipboardShowsLink(t *testing.T) {
	orig := writeClipboard
	t.Cleanup(func() { writeClipboard = orig })
	writeClipboard = func(string) error { return errors.New("no clipboard") }

	m := newTestApp(t, "http://127.0.0.1:1", "")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Contains(t, m.status.note, "?state=")
}

func TestApp_PreviewBlocksEditing(t *testing.T) {
	m := newTestApp(t, "http://127.0.0.1:1", "<|user|>\nhi")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.True(t, m.showPreview)
	assert.Contains(t, m.View(), "hi")

	m, _ = send(t, m, keyRune('x'))
	assert.Equal(t, "<|user|>\nhi", m.editor.Value())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.False(t, m.showPreview)
	assert.True(t, m.editor.enabled)
}

func TestApp_HelpToggle(t *testing.T) {
	m := newTestApp(t, "http://127.0.0.1:1", "")
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	assert.NotContains(t, m.View(), "insert system turn")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyF1})
	assert.Contains(t, m.View(), "insert system turn")
}

func TestApp_QuitAndDetach(t *testing.T) {
	m := newTestApp(t, "http://127.0.0.1:1", "<|user|>\nhi")

	m, _ = send(t, m, keyRune('!'))

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m.detach()

	snap := m.eng.State().Snapshot()
	assert.Equal(t, state.Pulled, snap.Meta.Initialization)
	assert.Equal(t, "<|user|>\nhi!", snap.Prompt)
}

func TestApp_DetachCancelsGeneration(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	m := newTestApp(t, srv.URL, "<|user|>\nhi")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	require.NotNil(t, cmd)

	m.detach()

	assert.False(t, m.eng.State().Snapshot().Meta.IsLoading)
	assert.ErrorIs(t, m.gen.Err(), context.Canceled)
}
