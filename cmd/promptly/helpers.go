package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/germanamz/promptly/pkg/modeladapter"
	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"
)

// spinnerFrames are braille characters for the loading indicator.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// truncate shortens s to at most width terminal cells, appending "…" when
// it had to cut. Newlines are replaced with spaces for single-line display.
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// fmtDuration formats a duration for display.
func fmtDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, sec)
}

// fmtRateLimit renders the remaining request and token budget. It returns ""
// when the server sent no rate limit headers.
func fmtRateLimit(info *modeladapter.RateLimitInfo) string {
	if info == nil {
		return ""
	}
	return fmt.Sprintf("req %d · tok %d", info.Requests.Remaining, info.Tokens.Remaining)
}
