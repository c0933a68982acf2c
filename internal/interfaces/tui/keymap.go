package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard key bindings.
type KeyMap struct {
	NextPanel key.Binding
	PrevPanel key.Binding
	Up        key.Binding
	Down      key.Binding
	Decrease  key.Binding
	Increase  key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Reset     key.Binding
	Retry     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPanel: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		PrevPanel: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous panel")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "previous slider")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "next slider")),
		Decrease:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "lower cutoff")),
		Increase:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "raise cutoff")),
		PageUp:    key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "scroll table up")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown", "f", " "), key.WithHelp("pgdn", "scroll table down")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset panel")),
		Retry:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry load")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPanel, k.Decrease, k.Increase, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPanel, k.PrevPanel, k.Up, k.Down},
		{k.Decrease, k.Increase, k.Reset, k.Retry},
		{k.PageUp, k.PageDown, k.Help, k.Quit},
	}
}
