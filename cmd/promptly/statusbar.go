package main

import (
	"fmt"
	"strings"

	"github.com/germanamz/promptly/pkg/engine"
	"github.com/germanamz/promptly/pkg/modeladapter"
	"github.com/mattn/go-runewidth"
)

// statusBarModel shows what the editor is doing and what the last
// generation cost.
type statusBarModel struct {
	width     int
	model     string
	kind      string
	messages  int
	readOnly  bool
	loading   bool
	frame     int
	rateLimit *modeladapter.RateLimitInfo
	last      *engine.GenerationSummary
	err       string
	note      string
}

// lead is the left-hand segment: progress, the last error or a note.
func (m statusBarModel) lead() (string, func(...string) string) {
	switch {
	case m.loading:
		return spinnerFrames[m.frame%len(spinnerFrames)] + " generating", loadingStyle.Render
	case m.err != "":
		return "error: " + m.err, errorStyle.Render
	case m.note != "":
		return m.note, noteStyle.Render
	default:
		return "", statusStyle.Render
	}
}

func (m statusBarModel) info() string {
	parts := []string{}
	if m.model != "" {
		parts = append(parts, m.model)
	}
	if m.kind != "" {
		parts = append(parts, m.kind)
	}

	noun := "turns"
	if m.messages == 1 {
		noun = "turn"
	}
	parts = append(parts, fmt.Sprintf("%d %s", m.messages, noun))

	if m.readOnly {
		parts = append(parts, fmt.Sprintf("read-only: over %d lines", maxEditorLines))
	}

	if m.last != nil {
		parts = append(parts, fmt.Sprintf("last: %d deltas in %s", m.last.Deltas, fmtDuration(m.last.Duration)))
	}
	if rl := fmtRateLimit(m.rateLimit); rl != "" {
		parts = append(parts, rl)
	}

	return strings.Join(parts, " · ")
}

func (m statusBarModel) View() string {
	lead, leadStyle := m.lead()
	info := m.info()

	width := m.width
	if width <= 0 {
		width = 80
	}
	width-- // leading space

	const sep = " │ "

	if lead == "" {
		return " " + statusStyle.Render(truncate(info, width))
	}

	leadWidth := runewidth.StringWidth(lead)
	room := width - leadWidth - runewidth.StringWidth(sep)
	if room < 8 {
		return " " + leadStyle(truncate(lead, width))
	}

	return " " + leadStyle(lead) + statusStyle.Render(sep+truncate(info, room))
}
