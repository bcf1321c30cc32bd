package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Enter        key.Binding
	Escape       key.Binding
	Quit         key.Binding
	Funnels      key.Binding
	Refresh      key.Binding
	Help         key.Binding
	PrevInterval key.Binding
	NextInterval key.Binding
	Variant      key.Binding
	Export       key.Binding
	Theme        key.Binding
}

// DefaultKeyMap provides the default set of key bindings.
var DefaultKeyMap = KeyMap{
	Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "up")),
	Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "down")),
	Enter:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Escape:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Funnels:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "funnels")),
	Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	PrevInterval: key.NewBinding(key.WithKeys("left", "h", "["), key.WithHelp("left/h", "shorter interval")),
	NextInterval: key.NewBinding(key.WithKeys("right", "l", "]"), key.WithHelp("right/l", "longer interval")),
	Variant:      key.NewBinding(key.WithKeys("tab", "v"), key.WithHelp("tab", "next variant")),
	Export:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
	Theme:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "next theme")),
}
