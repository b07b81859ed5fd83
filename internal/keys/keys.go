package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down     key.Binding
	Up       key.Binding
	NextPane key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Grouping of the sidebar: by app or by space
	GroupBy key.Binding

	// Spaces
	Spaces          key.Binding
	AddToSpace      key.Binding
	RemoveFromSpace key.Binding

	// Priority and do-not-disturb
	CyclePriority key.Binding
	ClearPriority key.Binding
	ToggleDND     key.Binding

	// Dismiss a notification
	Dismiss key.Binding

	Settings key.Binding
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
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		GroupBy: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "group by app/space"),
		),
		Spaces: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "manage spaces"),
		),
		AddToSpace: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add app to space"),
		),
		RemoveFromSpace: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove app from space"),
		),
		CyclePriority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle app priority"),
		),
		ClearPriority: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "reset app priority"),
		),
		ToggleDND: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "toggle do-not-disturb"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dismiss"),
		),
		Settings: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "settings"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.NextPane, k.Select,
		k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPane, k.Select, k.Back, k.Quit},
		{k.Help, k.Refresh, k.GroupBy, k.Dismiss, k.Settings},
		{k.Spaces, k.AddToSpace, k.RemoveFromSpace},
		{k.CyclePriority, k.ClearPriority, k.ToggleDND},
	}
}
