package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the order dashboard.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding

	// Filter cycling through the status pills.
	FilterNext key.Binding
	FilterPrev key.Binding

	// Order actions. Advance1..Advance3 apply the nth legal next
	// status of the selected order; Cancel is only honored while
	// cancellation is a legal transition.
	Advance1 key.Binding
	Advance2 key.Binding
	Advance3 key.Binding
	Cancel   key.Binding

	Refresh key.Binding
	Logout  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in binding set. Vim-style navigation
// alongside arrow keys, matching the rest of our terminal tooling.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("h", "left", "pgup"),
		key.WithHelp("h/←", "prev page"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("l", "right", "pgdown"),
		key.WithHelp("l/→", "next page"),
	),
	FilterNext: key.NewBinding(
		key.WithKeys("tab", "f"),
		key.WithHelp("tab", "next filter"),
	),
	FilterPrev: key.NewBinding(
		key.WithKeys("shift+tab", "F"),
		key.WithHelp("S-tab", "prev filter"),
	),
	Advance1: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "first action"),
	),
	Advance2: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "second action"),
	),
	Advance3: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "third action"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "cancel order"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Logout: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "log out"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
