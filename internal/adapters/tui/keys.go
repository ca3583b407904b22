package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	Tab     key.Binding
	Up      key.Binding
	Down    key.Binding
	New     key.Binding
	Delete  key.Binding
	Rename  key.Binding
	Load    key.Binding
	Edit    key.Binding
	Confirm key.Binding
	Start   key.Binding
	Stop    key.Binding
	Pause   key.Binding
	Cancel  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Rename:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		Load:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "load")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// activeHelp is the help.KeyMap for the active pane.
type activeHelp struct{ k keyMap }

func (h activeHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Confirm, h.k.Edit, h.k.Start, h.k.Stop, h.k.Pause, h.k.Tab, h.k.Quit}
}

func (h activeHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// listHelp is the help.KeyMap for the pending list pane.
type listHelp struct{ k keyMap }

func (h listHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Up, h.k.Down, h.k.New, h.k.Rename, h.k.Delete, h.k.Load, h.k.Tab, h.k.Quit}
}

func (h listHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// creatorHelp is the help.KeyMap while the creator form is open.
type creatorHelp struct{ k keyMap }

func (h creatorHelp) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "field")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
		h.k.Cancel,
	}
}

func (h creatorHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
