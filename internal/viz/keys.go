package viz

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause     key.Binding
	Reset     key.Binding
	Direction key.Binding
	Grow      key.Binding
	Shrink    key.Binding
	Mode      key.Binding
	Theme     key.Binding
	Snapshot  key.Binding
	Record    key.Binding
	Collect   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Pause:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "stop/start")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset pool")),
		Direction: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "flip direction")),
		Grow:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "larger grid")),
		Shrink:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "smaller grid")),
		Mode:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "braille/blocks")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Snapshot:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save png")),
		Record:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "record gif")),
		Collect:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collect")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Reset, k.Collect, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Reset, k.Collect},
		{k.Direction, k.Grow, k.Shrink, k.Mode},
		{k.Theme, k.Snapshot, k.Record},
		{k.Help, k.Quit},
	}
}
