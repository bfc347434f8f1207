// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tellerui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings. Text inputs take precedence over
// every binding except ForceQuit.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Next     key.Binding
	Previous key.Binding
	Submit   key.Binding
	Cancel   key.Binding

	Transfer key.Binding
	Refresh  key.Binding
	Filter   key.Binding
	Logout   key.Binding

	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap pairs vim-style movement with the arrow keys.
var DefaultKeyMap = KeyMap{
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("Tab", "next field")),
	Previous: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("S-Tab", "previous field")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "submit")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "cancel")),

	Transfer: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "transfer")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),

	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
}
