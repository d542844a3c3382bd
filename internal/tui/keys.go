package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Tab     key.Binding
	Enter   key.Binding
	Search  key.Binding
	Enroll  key.Binding
	Reset   key.Binding
	Refresh key.Binding
	Login   key.Binding
	Logout  key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev bucket")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next bucket")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Enroll:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "enroll")),
	Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset filters")),
	Refresh: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload catalog")),
	Login:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "log in")),
	Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}
