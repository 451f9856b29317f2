package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NewNote   key.Binding
	Close     key.Binding
	Submit    key.Binding
	NextField key.Binding
	PrevTag   key.Binding
	NextTag   key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Reload    key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NewNote:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new note")),
		Close:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		NextField: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		PrevTag:   key.NewBinding(key.WithKeys("left")),
		NextTag:   key.NewBinding(key.WithKeys("right")),
		PrevPage:  key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup", "prev page")),
		NextPage:  key.NewBinding(key.WithKeys("pgdown", "ctrl+f"), key.WithHelp("pgdn", "next page")),
		Reload:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}
