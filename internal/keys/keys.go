package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down      key.Binding
	Up        key.Binding
	NextGroup key.Binding
	PrevGroup key.Binding

	// Badges
	Alerts   key.Binding
	Messages key.Binding

	// Notification actions
	Open        key.Binding
	ToggleRead  key.Binding
	MarkAllRead key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Wikis
	AddSource     key.Binding
	ManageSources key.Binding
	ToggleEnabled key.Binding
	Delete        key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		NextGroup: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next wiki"),
		),
		PrevGroup: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous wiki"),
		),
		Alerts: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "alerts"),
		),
		Messages: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "messages"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		ToggleRead: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "toggle read"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark all read"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh"),
		),
		AddSource: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add wiki"),
		),
		ManageSources: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "manage wikis"),
		),
		ToggleEnabled: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "enable/disable"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Alerts, k.Messages, k.Up, k.Down,
		k.ToggleRead, k.MarkAllRead, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Alerts, k.Messages, k.Back, k.Quit},
		{k.Up, k.Down, k.NextGroup, k.PrevGroup},
		{k.Open, k.ToggleRead, k.MarkAllRead},
		{k.Refresh, k.AddSource, k.ManageSources, k.Help},
	}
}
