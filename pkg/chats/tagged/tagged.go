// Package tagged converts between a tagged prompt buffer and an ordered list
// of messages.
//
// A tagged buffer is free text partitioned by role markers such as
// "<|system|>" and "<|user|>". Each marker opens a message that runs until the
// next marker; an optional "<|im_end|>" closes it. Text before the first
// marker is ignored.
package tagged

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/germanamz/promptly/pkg/chats/message"
	"github.com/germanamz/promptly/pkg/chats/role"
)

// AssistantOpener starts a fresh assistant turn at the end of a buffer so a
// streamed reply lands inside it.
const AssistantOpener = "<|assistant|>\n"

var markerPattern = regexp.MustCompile(`<\|(system|user|assistant)\|>`)

// Parse splits buffer into messages. It never fails: markers without content
// produce no message, and text outside any marker is dropped.
func Parse(buffer string) []message.Message {
	locs := markerPattern.FindAllStringSubmatchIndex(buffer, -1)
	if len(locs) == 0 {
		return nil
	}

	msgs := make([]message.Message, 0, len(locs))
	for i, loc := range locs {
		end := len(buffer)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		m := message.New(role.Role(buffer[loc[2]:loc[3]]), buffer[loc[1]:end])
		if m.Empty() {
			continue
		}
		msgs = append(msgs, m)
	}

	if len(msgs) == 0 {
		return nil
	}

	return msgs
}

// Format renders msgs as a tagged buffer. Each message becomes
// "<|role|>\n<content>\n<|im_end|>" and messages are separated by a blank
// line.
func Format(msgs []message.Message) string {
	blocks := make([]string, 0, len(msgs))
	for _, m := range msgs {
		blocks = append(blocks, m.Role.Marker()+"\n"+message.Normalize(m.Content)+"\n"+message.EndOfTurn)
	}

	return strings.Join(blocks, "\n\n")
}

// Count returns the number of messages Parse would yield for buffer.
func Count(buffer string) int {
	return len(Parse(buffer))
}

// Block returns an empty template block for r, ready to be typed into.
func Block(r role.Role) string {
	return r.Marker() + "\n\n" + message.EndOfTurn + "\n"
}

// TrimTrailingEndOfTurn removes a single end-of-turn marker from the end of
// buffer, ignoring whitespace after it. Buffers that do not end with a marker
// are returned unchanged.
func TrimTrailingEndOfTurn(buffer string) string {
	trimmed := strings.TrimRightFunc(buffer, unicode.IsSpace)
	if !strings.HasSuffix(trimmed, message.EndOfTurn) {
		return buffer
	}

	return strings.TrimSuffix(trimmed, message.EndOfTurn)
}
