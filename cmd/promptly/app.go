package main

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/germanamz/promptly/pkg/chats/tagged"
	"github.com/germanamz/promptly/pkg/engine"
	"github.com/germanamz/promptly/pkg/providers/openai"
	"github.com/germanamz/promptly/pkg/stream"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// appModel is the root bubbletea model: the prompt editor, an optional
// markdown preview, the status bar and the key help.
type appModel struct {
	ctx     context.Context
	eng     *engine.Engine
	pageURL string
	sub     *engine.Subscription

	editor  *editorModel
	preview previewModel
	help    help.Model
	keys    keyMap
	status  statusBarModel

	gen       *engine.Generation
	cancelGen context.CancelFunc

	showPreview bool
	width       int
	height      int
}

func newAppModel(ctx context.Context, eng *engine.Engine, pageURL string) appModel {
	if ctx == nil {
		ctx = context.Background()
	}

	return appModel{
		ctx:     ctx,
		eng:     eng,
		pageURL: pageURL,
		sub:     eng.Events().Subscribe(16),
		editor:  newEditor(),
		preview: newPreview(),
		help:    help.New(),
		keys:    defaultKeyMap(),
	}
}

// Init loads the share link, mounts the editor and starts listening for
// engine events.
func (m appModel) Init() tea.Cmd {
	st := m.eng.State()
	st.Pull(m.pageURL)
	st.Mount(m.editor)

	return tea.Batch(m.editor.enable(), waitForEngineEvent(m.sub))
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.showPreview {
			m.preview.show(m.eng.State().Snapshot().Prompt)
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case streamEventMsg:
		cmd := m.handleStreamEvent(msg)
		return m, cmd

	case engineEventMsg:
		if msg.ev.Kind == engine.EventGenerationEnd {
			if s, ok := msg.ev.Data.(engine.GenerationSummary); ok {
				m.status.last = &s
			}
		}
		return m, waitForEngineEvent(m.sub)

	case tickMsg:
		if !m.status.loading {
			return m, nil
		}
		m.status.frame++
		return m, tickCmd()
	}

	// Cursor blink and other textarea messages.
	changed, cmd := m.editor.update(msg)
	if changed {
		m.eng.State().EditorChanged()
		m.refresh()
	}

	return m, cmd
}

func (m appModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var body string
	if m.showPreview {
		body = previewFrameStyle.Render(m.preview.View())
	} else {
		body = editorFrameStyle.Render(m.editor.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		m.status.View(),
		m.help.View(m.keys),
	)
}

func (m *appModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.status.note = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.recalcLayout()
		return nil

	case key.Matches(msg, m.keys.Preview):
		return m.togglePreview()

	case key.Matches(msg, m.keys.Generate):
		return m.generate()

	case key.Matches(msg, m.keys.Share):
		m.share()
		return nil
	}

	if m.showPreview {
		var cmd tea.Cmd
		m.preview.viewport, cmd = m.preview.viewport.Update(msg)
		return cmd
	}

	if m.status.loading {
		return nil
	}

	if r, ok := m.keys.roleFor(msg); ok {
		m.editor.Insert(tagged.Block(r))
		m.eng.State().EditorChanged()
		m.refresh()
		return nil
	}

	changed, cmd := m.editor.update(msg)
	if changed {
		m.eng.State().EditorChanged()
		m.refresh()
	}

	return cmd
}

func (m *appModel) togglePreview() tea.Cmd {
	m.showPreview = !m.showPreview

	if m.showPreview {
		m.editor.disable()
		m.preview.show(m.eng.State().Snapshot().Prompt)
		return nil
	}

	if m.status.loading {
		return nil
	}

	return m.editor.enable()
}

// generate starts a generation unless one is already running. The HTTP
// exchange runs on its own goroutine; its events come back one at a time as
// streamEventMsg so the buffer is only touched from Update.
func (m *appModel) generate() tea.Cmd {
	g := m.eng.Prepare()
	if g == nil {
		return nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.gen = g
	m.cancelGen = cancel

	ch := make(chan stream.Event, 64)
	go func() {
		defer close(ch)
		g.Stream(ctx, func(ev stream.Event) {
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		})
	}()

	m.editor.disable()
	m.status.loading = true
	m.status.err = ""
	m.refresh()

	return tea.Batch(waitForStreamEvent(g, ch), tickCmd())
}

func (m *appModel) handleStreamEvent(msg streamEventMsg) tea.Cmd {
	if msg.gen != m.gen {
		return nil
	}

	msg.gen.Apply(msg.ev)

	if msg.ev.Kind == stream.EventDelta {
		m.refresh()
		return waitForStreamEvent(msg.gen, msg.ch)
	}

	return m.endGeneration()
}

func (m *appModel) endGeneration() tea.Cmd {
	g := m.gen
	m.gen = nil
	if m.cancelGen != nil {
		m.cancelGen()
		m.cancelGen = nil
	}

	m.status.loading = false
	m.status.rateLimit = m.eng.RateLimit()
	if err := g.Err(); err != nil && !errors.Is(err, context.Canceled) {
		m.status.err = err.Error()
	}
	m.refresh()

	if m.showPreview {
		m.preview.show(m.eng.State().Snapshot().Prompt)
		return nil
	}

	return m.editor.enable()
}

func (m *appModel) share() {
	link, err := m.eng.ShareURL()
	if err != nil {
		m.status.err = err.Error()
		return
	}

	if err := writeClipboard(link); err != nil {
		m.status.note = link
		return
	}

	m.status.note = "share link copied to clipboard"
}

// refresh copies the parts of the state shown in the status bar.
func (m *appModel) refresh() {
	snap := m.eng.State().Snapshot()
	m.status.model = snap.Model
	m.status.kind = openai.KindFor(snap.TokenizerURL).String()
	m.status.messages = tagged.Count(snap.Prompt)
	m.status.readOnly = m.editor.readOnly
}

func (m *appModel) recalcLayout() {
	m.status.width = m.width
	m.help.Width = m.width

	bodyHeight := m.height - 1 - lipgloss.Height(m.help.View(m.keys))
	// Frames take one column and one row on each side.
	m.editor.setSize(m.width-2, bodyHeight-2)
	m.preview.setSize(m.width-2, bodyHeight)
}

// detach cancels a running generation and hands the buffer back to the state
// engine. It is called once the program has exited.
func (m appModel) detach() {
	if m.cancelGen != nil {
		m.cancelGen()
	}
	if m.gen != nil {
		m.gen.Finish(context.Canceled)
	}

	m.eng.State().Unmount()
	m.sub.Close()
}
