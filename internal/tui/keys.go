package tui

import "charm.land/bubbles/v2/key"

// KeyMap holds the host-level bindings. Everything else is forwarded to
// the console session.
type KeyMap struct {
	Quit      key.Binding
	Interrupt key.Binding
	Copy      key.Binding
	Paste     key.Binding
	Find      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "quit"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "interrupt"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+shift+c"),
			key.WithHelp("ctrl+shift+c", "copy"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+shift+v"),
			key.WithHelp("ctrl+shift+v", "paste"),
		),
		// Handled by the session; bound here for the help line only.
		Find: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "find"),
		),
	}
}

// ShortHelp lists the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Find, k.Copy, k.Paste, k.Quit}
}
