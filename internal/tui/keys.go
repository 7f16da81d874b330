package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the widget's key bindings. It implements help.KeyMap.
type keyMap struct {
	Fetch key.Binding
	Quit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Fetch: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter/space", "get quote"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Fetch, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
