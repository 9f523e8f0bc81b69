package console

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Tab      key.Binding
	Search   key.Binding
	Filter   key.Binding
	More     key.Binding
	Approve  key.Binding
	Revoke   key.Binding
	Feature  key.Binding
	Delete   key.Binding
	Upload   key.Binding
	Reload   key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Quit     key.Binding
	ShowHelp key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "wishes/gallery")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		More:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load more")),
		Approve:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		Revoke:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "revoke")),
		Feature:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "feature/unfeature")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Upload:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		Reload:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Confirm:  key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		Cancel:   key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		ShowHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Search, k.Approve, k.Feature, k.Delete, k.Quit, k.ShowHelp}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Tab, k.More, k.Reload},
		{k.Search, k.Filter, k.Approve, k.Revoke, k.Feature},
		{k.Delete, k.Upload, k.Confirm, k.Cancel, k.Quit},
	}
}
