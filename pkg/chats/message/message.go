// Package message defines the Message type exchanged with chat endpoints.
package message

import (
	"strings"

	"github.com/germanamz/promptly/pkg/chats/role"
)

// EndOfTurn is the literal that closes a message inside a tagged prompt. It is
// never part of a message's content.
const EndOfTurn = "<|im_end|>"

// Message is a single role-tagged turn of a conversation. It is a value type
// that copies cheaply; its JSON form is the chat endpoint's wire format.
type Message struct {
	Role    role.Role `json:"role"`
	Content string    `json:"content"`
}

// New creates a message with normalized content (see Normalize).
func New(r role.Role, content string) Message {
	return Message{Role: r, Content: Normalize(content)}
}

// Normalize strips end-of-turn markers from s and trims surrounding
// whitespace.
func Normalize(s string) string {
	for strings.Contains(s, EndOfTurn) {
		s = strings.ReplaceAll(s, EndOfTurn, "")
	}

	return strings.TrimSpace(s)
}

// Empty reports whether the message has no content after normalization.
func (m Message) Empty() bool {
	return Normalize(m.Content) == ""
}
