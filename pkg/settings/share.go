package settings

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Partial is a decoded share payload. Nil fields were not present in the
// payload and leave the receiving settings untouched.
type Partial struct {
	APIBaseURL   *string `json:"apiBaseUrl"`
	Model        *string `json:"model"`
	TokenizerURL *string `json:"tokenizerUrl"`
	Prompt       *string `json:"prompt"`
	Params       *Params `json:"params"`
}

// Apply shallow-merges p into s: every present top-level field replaces the
// one in s. Params is replaced as a whole.
func (p Partial) Apply(s Settings) Settings {
	if p.APIBaseURL != nil {
		s.APIBaseURL = *p.APIBaseURL
	}
	if p.Model != nil {
		s.Model = *p.Model
	}
	if p.TokenizerURL != nil {
		s.TokenizerURL = *p.TokenizerURL
	}
	if p.Prompt != nil {
		s.Prompt = *p.Prompt
	}
	if p.Params != nil {
		s.Params = *p.Params
	}

	return s
}

// EncodeShare renders s as JSON, then standard base64, then swaps the
// alphabet to the URL-safe one and drops the padding.
func EncodeShare(s Settings) string {
	data, _ := json.Marshal(s) // string fields only, cannot fail

	enc := base64.StdEncoding.EncodeToString(data)
	enc = strings.NewReplacer("+", "-", "/", "_").Replace(enc)

	return strings.TrimRight(enc, "=")
}

// DecodeShare reverses EncodeShare. Standard-alphabet input and missing or
// present padding are all accepted.
func DecodeShare(v string) (Partial, error) {
	s := strings.NewReplacer("-", "+", "_", "/").Replace(strings.TrimSpace(v))
	s = strings.TrimRight(s, "=")
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Partial{}, fmt.Errorf("settings: decode share: %w", err)
	}

	var p Partial
	if err := json.Unmarshal(data, &p); err != nil {
		return Partial{}, fmt.Errorf("settings: decode share: %w", err)
	}

	return p, nil
}
