// Package chats holds the data model of a tagged prompt.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/promptly/pkg/chats/role]: speaker roles and their markers
//   - [github.com/germanamz/promptly/pkg/chats/message]: a role plus normalized text
//   - [github.com/germanamz/promptly/pkg/chats/tagged]: parsing and formatting of the marker text format
//
// No provider or API code is included; chats is a foundation layer the
// request builders and the editor build on.
package chats
