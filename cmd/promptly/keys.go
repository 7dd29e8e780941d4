package main

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/germanamz/promptly/pkg/chats/role"
)

// keyMap lists the app-level bindings. They are matched before a key reaches
// the editor.
type keyMap struct {
	Generate        key.Binding
	Share           key.Binding
	InsertSystem    key.Binding
	InsertUser      key.Binding
	InsertAssistant key.Binding
	Preview         key.Binding
	Help            key.Binding
	Quit            key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Generate: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "generate"),
		),
		Share: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "copy share link"),
		),
		InsertSystem: key.NewBinding(
			key.WithKeys("alt+s"),
			key.WithHelp("alt+s", "insert system turn"),
		),
		InsertUser: key.NewBinding(
			key.WithKeys("alt+u"),
			key.WithHelp("alt+u", "insert user turn"),
		),
		InsertAssistant: key.NewBinding(
			key.WithKeys("alt+a"),
			key.WithHelp("alt+a", "insert assistant turn"),
		),
		Preview: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "toggle preview"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Generate, k.Share, k.Preview, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Generate, k.Share, k.Preview},
		{k.InsertSystem, k.InsertUser, k.InsertAssistant},
		{k.Help, k.Quit},
	}
}

// roleFor returns the role whose insert binding matches msg.
func (k keyMap) roleFor(msg tea.KeyMsg) (role.Role, bool) {
	switch {
	case key.Matches(msg, k.InsertSystem):
		return role.System, true
	case key.Matches(msg, k.InsertUser):
		return role.User, true
	case key.Matches(msg, k.InsertAssistant):
		return role.Assistant, true
	default:
		return "", false
	}
}
