package shell

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Submit  key.Binding
	Focus   key.Binding
	Back    key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Select  key.Binding
	Filter  key.Binding
	Options key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Export  key.Binding
	Help    key.Binding
	Dismiss key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "find leads")),
		Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		Back:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Select:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
		Filter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
		Options: key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "min rating")),
		ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Export:  key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export xlsx")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Dismiss: key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc", "dismiss")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Submit, k.Filter, k.Export, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Focus, k.Back, k.Submit},
		{k.Up, k.Down, k.Select},
		{k.Filter, k.Options, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.Export, k.Help, k.Quit},
	}
}

const helpMarkdown = `# MidnightScout

Find local businesses that need a better web presence.

## Keyboard

| Key | Action |
| --- | --- |
| tab / shift+tab | Move between industry, city, list and map |
| enter | Search (in the form) or select the highlighted lead |
| ↑ ↓ | Move through the lead list |
| f | Show or hide the rating filter |
| 1 2 3 4 | Minimum rating: All, 3+, 4+, 4.5+ |
| ← → | Cycle the rating filter (list) or pan (map) |
| + - | Zoom the map |
| ctrl+e | Export the visible leads to an Excel sheet |
| ? | Toggle this help |
| q / ctrl+c | Quit |

## Mouse

Click a card or a map marker to select a lead. The map's **[+]** and **[-]**
buttons zoom; the wheel scrolls the list.

Map data © OpenStreetMap contributors © CARTO.
`
