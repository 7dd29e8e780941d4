package message

import (
	"encoding/json"
	"testing"

	"github.com/germanamz/promptly/pkg/chats/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	msg := New(role.User, "  hello  ")

	assert.Equal(t, role.User, msg.Role)
	assert.Equal(t, "hello", msg.Content)
}

func TestNew_StripsEndOfTurn(t *testing.T) {
	msg := New(role.Assistant, "\nhi there\n<|im_end|>\n")

	assert.Equal(t, "hi there", msg.Content)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a<|user|>b", Normalize(" a<|user|>b "))
	assert.Equal(t, "ab", Normalize("a<|im_end|>b"))
	assert.Empty(t, Normalize("\n\t<|im_end|>\n"))
}

func TestMessage_Empty(t *testing.T) {
	assert.True(t, Message{Role: role.User}.Empty())
	assert.True(t, Message{Role: role.User, Content: " <|im_end|> "}.Empty())
	assert.False(t, Message{Role: role.User, Content: "x"}.Empty())
}

func TestMessage_JSON(t *testing.T) {
	b, err := json.Marshal(New(role.System, "be brief"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"role":"system","content":"be brief"}`, string(b))
}
