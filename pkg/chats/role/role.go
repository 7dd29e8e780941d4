// Package role defines the speaker roles of a tagged prompt.
package role

// Role represents the speaker of a message in a conversation.
type Role string

const (
	System    Role = "system"
	User      Role = "user"
	Assistant Role = "assistant"
)

// All lists the known roles in the order they usually appear in a prompt.
var All = []Role{System, User, Assistant}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case System, User, Assistant:
		return true
	}
	return false
}

// String returns the underlying string value of the role.
func (r Role) String() string {
	return string(r)
}

// Marker returns the literal tag that opens a message of this role,
// e.g. "<|user|>".
func (r Role) Marker() string {
	return "<|" + string(r) + "|>"
}
