package state

import "strings"

// Editor is the text widget the engine keeps in sync with the prompt.
// Change notifications flow the other way: the widget's owner calls
// Engine.EditorChanged after the user edits.
type Editor interface {
	// Value returns the whole buffer.
	Value() string
	// SetValue replaces the whole buffer.
	SetValue(s string)
	// Insert inserts s at the cursor.
	Insert(s string)
	// Append adds s at the end of the buffer.
	Append(s string)
	// LineCount returns the number of lines in the buffer.
	LineCount() int
	// RevealLine scrolls so that the 1-based line n is visible.
	RevealLine(n int)
}

// BufferEditor is an Editor without a view. The cursor is always at the end
// of the buffer. Headless runs and tests use it.
type BufferEditor struct {
	buf      strings.Builder
	revealed int
}

// NewBufferEditor returns a BufferEditor holding s.
func NewBufferEditor(s string) *BufferEditor {
	e := &BufferEditor{}
	e.buf.WriteString(s)

	return e
}

func (e *BufferEditor) Value() string { return e.buf.String() }

func (e *BufferEditor) SetValue(s string) {
	e.buf.Reset()
	e.buf.WriteString(s)
}

func (e *BufferEditor) Insert(s string) { e.buf.WriteString(s) }

func (e *BufferEditor) Append(s string) { e.buf.WriteString(s) }

func (e *BufferEditor) LineCount() int { return strings.Count(e.buf.String(), "\n") + 1 }

func (e *BufferEditor) RevealLine(n int) { e.revealed = n }

// Revealed returns the last line passed to RevealLine.
func (e *BufferEditor) Revealed() int { return e.revealed }
