package main

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/germanamz/promptly/pkg/state"
)

var _ state.Editor = (*editorModel)(nil)

// maxEditorLines is the textarea's own line cap. Longer buffers are shown cut
// short and cannot be edited.
const maxEditorLines = 10000

var tabSpaces = strings.Repeat(" ", 4)

// editorModel implements state.Editor. It holds the exact buffer; the
// textarea only displays it, because the textarea rewrites tabs, carriage
// returns and control runes on the way in. Edits made in the textarea are
// mapped back onto the buffer. It is used through a pointer so the state
// engine and the bubbletea model share it.
type editorModel struct {
	textarea textarea.Model
	buf      strings.Builder
	enabled  bool
	readOnly bool
}

func newEditor() *editorModel {
	ta := textarea.New()
	ta.Placeholder = "<|system|> ... <|user|> ... then ctrl+g to generate"
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = lipgloss.NewStyle()
	ta.BlurredStyle.Prompt = lipgloss.NewStyle()
	// alt+u inserts a user block; the app handles it before the textarea.
	ta.KeyMap.UppercaseWordForward = key.NewBinding(key.WithDisabled())

	return &editorModel{textarea: ta}
}

func (e *editorModel) Value() string { return e.buf.String() }

func (e *editorModel) SetValue(s string) {
	e.buf.Reset()
	e.buf.WriteString(s)

	shown := displayText(s)
	e.readOnly = strings.Count(shown, "\n") >= maxEditorLines
	e.textarea.SetValue(shown)
}

// Insert inserts s at the cursor.
func (e *editorModel) Insert(s string) {
	if e.readOnly {
		return
	}

	before := e.textarea.Value()
	e.textarea.InsertString(displayText(s))
	e.reconcile(before, e.textarea.Value(), s)
}

// Append adds s after the last character. The cursor ends up there too, which
// keeps a streaming reply in view.
func (e *editorModel) Append(s string) {
	if s == "" {
		return
	}

	prev := e.buf.String()
	e.buf.WriteString(s)

	// A "\r" already shown as a line break joins a leading "\n" into one.
	if strings.HasSuffix(prev, "\r") && strings.HasPrefix(s, "\n") {
		s = s[1:]
	}
	shown := displayText(s)

	if !e.readOnly && e.textarea.LineCount()+strings.Count(shown, "\n") > maxEditorLines {
		e.readOnly = true
	}

	e.moveToLine(e.textarea.LineCount() - 1)
	e.textarea.CursorEnd()
	e.textarea.InsertString(shown)
}

func (e *editorModel) LineCount() int { return e.textarea.LineCount() }

// RevealLine moves the cursor to the 1-based line n; the textarea scrolls to
// keep the cursor visible.
func (e *editorModel) RevealLine(n int) {
	e.moveToLine(min(max(n, 1), e.textarea.LineCount()) - 1)
}

func (e *editorModel) moveToLine(target int) {
	if e.textarea.Line() == target {
		return
	}

	// Cursor moves are by visual row, so wrapped lines take several steps.
	steps := e.textarea.Length() + e.textarea.LineCount()

	for i := steps; i > 0 && e.textarea.Line() < target; i-- {
		e.textarea.CursorDown()
	}

	for i := steps; i > 0 && e.textarea.Line() > target; i-- {
		e.textarea.CursorUp()
	}
}

func (e *editorModel) enable() tea.Cmd {
	e.enabled = true
	return e.textarea.Focus()
}

func (e *editorModel) disable() {
	e.enabled = false
	e.textarea.Blur()
}

func (e *editorModel) setSize(width, height int) {
	e.textarea.SetWidth(width)
	e.textarea.SetHeight(max(height, 1))
}

// update forwards msg to the textarea and reports whether the buffer changed.
func (e *editorModel) update(msg tea.Msg) (bool, tea.Cmd) {
	if !e.enabled {
		return false, nil
	}
	if _, ok := msg.(tea.KeyMsg); ok && e.readOnly {
		return false, nil
	}

	before := e.textarea.Value()

	var cmd tea.Cmd
	e.textarea, cmd = e.textarea.Update(msg)

	after := e.textarea.Value()
	if after == before {
		return false, cmd
	}

	e.reconcile(before, after, "")

	return true, cmd
}

func (e *editorModel) View() string { return e.textarea.View() }

// reconcile applies the textarea edit that turned before into after to the
// buffer. before is the display form of the buffer. When the edit inserted
// exactly the display form of inserted, inserted itself goes into the buffer.
// Units only partly touched by the edit, such as a tab losing one of its
// spaces, are replaced by their display form.
func (e *editorModel) reconcile(before, after, inserted string) {
	old, cur := []rune(before), []rune(after)

	p := 0
	for p < len(old) && p < len(cur) && old[p] == cur[p] {
		p++
	}

	oldEnd, curEnd := len(old), len(cur)
	for oldEnd > p && curEnd > p && old[oldEnd-1] == cur[curEnd-1] {
		oldEnd--
		curEnd--
	}

	// old[p:oldEnd] became cur[p:curEnd]. Find the bytes of the buffer
	// behind old[p:oldEnd].
	text := e.buf.String()
	start, end := len(text), len(text)
	head, tail := "", ""
	found := false

	pos := 0
	for i := 0; i < len(text); {
		n, shown := nextUnit(text, i)
		lo := pos
		pos += utf8.RuneCountInString(shown)

		if pos > p && lo < oldEnd {
			if !found {
				start, head, found = i, string(old[lo:p]), true
			}
			end = i + n
			tail = ""
			if pos > oldEnd {
				tail = string(old[oldEnd:pos])
			}
		} else if pos > p {
			if !found {
				start, end = i, i
			}
			break
		}

		i += n
	}

	mid := string(cur[p:curEnd])
	if inserted != "" && p == oldEnd && mid == displayText(inserted) {
		mid = inserted
	}

	repl := head + mid + tail
	prefix, suffix := text[:start], text[end:]

	// A lone "\r" followed by "\n" would collapse into one line break.
	if strings.HasSuffix(prefix, "\r") && strings.HasPrefix(repl+suffix, "\n") {
		prefix = prefix[:len(prefix)-1] + "\n"
	}
	if strings.HasSuffix(repl, "\r") && strings.HasPrefix(suffix, "\n") {
		repl = repl[:len(repl)-1] + "\n"
	}

	e.buf.Reset()
	e.buf.WriteString(prefix)
	e.buf.WriteString(repl)
	e.buf.WriteString(suffix)
}

// nextUnit returns the byte size of the unit starting at s[i] and how the
// textarea shows it. "\r\n" is one unit.
func nextUnit(s string, i int) (int, string) {
	r, size := utf8.DecodeRuneInString(s[i:])

	switch {
	case r == '\r':
		if i+1 < len(s) && s[i+1] == '\n' {
			return 2, "\n"
		}
		return 1, "\n"
	case r == '\n':
		return 1, "\n"
	case r == '\t':
		return 1, tabSpaces
	case r == utf8.RuneError, unicode.IsControl(r):
		return size, ""
	}

	return size, s[i : i+size]
}

// displayText returns s the way the textarea would store it, so that the
// textarea keeps it unchanged.
func displayText(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); {
		n, shown := nextUnit(s, i)
		sb.WriteString(shown)
		i += n
	}

	return sb.String()
}
