package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Sharp    key.Binding
	Flat     key.Binding
	Natural  key.Binding
	Duration key.Binding
	Dot      key.Binding
	Add      key.Binding
	Change   key.Binding
	Measure  key.Binding
	Export   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Up, k.Add, k.Change, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Sharp, k.Flat, k.Natural},
		{k.Duration, k.Dot},
		{k.Add, k.Change, k.Measure},
		{k.Export, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/→", "move"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "next event"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/↓", "pitch"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓", "pitch down"),
	),
	Sharp: key.NewBinding(
		key.WithKeys("#"),
		key.WithHelp("#", "sharp"),
	),
	Flat: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "flat"),
	),
	Natural: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "no accidental"),
	),
	Duration: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7"),
		key.WithHelp("1-7", "w h q 8 16 32 64"),
	),
	Dot: key.NewBinding(
		key.WithKeys("."),
		key.WithHelp(".", "dotted"),
	),
	Add: key.NewBinding(
		key.WithKeys("enter", "a"),
		key.WithHelp("enter", "add pitch"),
	),
	Change: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "set duration"),
	),
	Measure: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "new measure"),
	),
	Export: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "export"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
