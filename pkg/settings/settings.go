// Package settings defines the persisted client settings record, its
// request parameters and the URL-safe share encoding.
package settings

import (
	"math"
	"strconv"
	"strings"
)

// Params holds the optional request parameters exactly as the user typed
// them. A value that is empty or does not parse is treated as absent.
type Params struct {
	MaxTokens        string `json:"maxTokens"`
	Temperature      string `json:"temperature"`
	TopK             string `json:"topK"`
	TopP             string `json:"topP"`
	FrequencyPenalty string `json:"frequencyPenalty"`
	PresencePenalty  string `json:"presencePenalty"`
}

// Settings is the non-transient client state. It is what gets persisted and
// what a share link carries; it never holds the credential.
type Settings struct {
	APIBaseURL   string `json:"apiBaseUrl"`
	Model        string `json:"model"`
	TokenizerURL string `json:"tokenizerUrl"`
	Prompt       string `json:"prompt"`
	Params       Params `json:"params"`
}

// ParseInt returns the integer held by raw, or nil when raw is empty or not a
// base-10 integer. Surrounding whitespace is ignored.
func ParseInt(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}

	return &v
}

// ParseFloat returns the finite number held by raw, or nil when raw is empty,
// malformed, NaN or infinite. Surrounding whitespace is ignored.
func ParseFloat(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}
