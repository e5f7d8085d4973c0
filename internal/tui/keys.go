package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up             key.Binding
	Down           key.Binding
	Add            key.Binding
	Edit           key.Binding
	Toggle         key.Binding
	Delete         key.Binding
	Filter         key.Binding
	CompleteAll    key.Binding
	ClearCompleted key.Binding
	Refresh        key.Binding
	Submit         key.Binding
	Cancel         key.Binding
	Quit           key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:            key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:           key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
		Toggle:         key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Delete:         key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Filter:         key.NewBinding(key.WithKeys("f", "tab"), key.WithHelp("f", "filter")),
		CompleteAll:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "complete all")),
		ClearCompleted: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "remove completed")),
		Refresh:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Submit:         key.NewBinding(key.WithKeys("enter")),
		Cancel:         key.NewBinding(key.WithKeys("esc")),
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Toggle, k.Delete, k.Filter, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Edit},
		{k.Toggle, k.Delete, k.Filter, k.Refresh},
		{k.CompleteAll, k.ClearCompleted, k.Quit},
	}
}
