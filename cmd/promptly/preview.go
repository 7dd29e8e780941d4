package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/germanamz/promptly/pkg/chats/tagged"
)

const emptyPreview = "_No tagged turns yet. Insert one with alt+s, alt+u or alt+a._"

// previewModel renders the parsed conversation as markdown in a scrollable
// viewport.
type previewModel struct {
	viewport viewport.Model
	renderer *glamour.TermRenderer
	wrap     int
}

func newPreview() previewModel {
	return previewModel{viewport: viewport.New(80, 20)}
}

func (p *previewModel) setSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = max(height, 1)

	wrap := max(width-4, 20)
	if wrap == p.wrap && p.renderer != nil {
		return
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		p.renderer = nil
		return
	}
	p.renderer = r
	p.wrap = wrap
}

// show renders prompt into the viewport and scrolls to the top.
func (p *previewModel) show(prompt string) {
	p.viewport.SetContent(renderConversation(p.renderer, prompt))
	p.viewport.GotoTop()
}

func (p previewModel) View() string { return p.viewport.View() }

// conversationMarkdown lays out the tagged turns of prompt as markdown, one
// heading per turn.
func conversationMarkdown(prompt string) string {
	msgs := tagged.Parse(prompt)
	if len(msgs) == 0 {
		return emptyPreview
	}

	var sb strings.Builder
	for i, m := range msgs {
		if i > 0 {
			sb.WriteString("\n\n---\n\n")
		}
		sb.WriteString("### ")
		sb.WriteString(m.Role.String())
		sb.WriteString("\n\n")
		sb.WriteString(m.Content)
	}

	return sb.String()
}

// renderConversation renders the markdown with r, falling back to the raw
// markdown when r is nil or fails.
func renderConversation(r *glamour.TermRenderer, prompt string) string {
	md := conversationMarkdown(prompt)
	if r == nil {
		return md
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}

	return strings.TrimRight(out, "\n")
}
