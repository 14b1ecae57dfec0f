// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	Up   key.Binding
	Down key.Binding

	NextPage key.Binding
	PrevPage key.Binding

	// Filter opens the search prompt.
	Filter key.Binding
	// Sort flips the sort direction.
	Sort key.Binding
	// SortKey cycles the sort field.
	SortKey key.Binding
	// TypeFilter cycles the document type filter.
	TypeFilter key.Binding
	// Reset restores the default filters.
	Reset key.Binding
	// Refresh refetches the current page.
	Refresh key.Binding

	// ToggleEncrypted flips the encrypted flag of the selected document.
	ToggleEncrypted key.Binding
	// Delete removes the selected document.
	Delete key.Binding

	// Upload opens the upload form.
	Upload key.Binding
	// NextField and PrevField move through the upload form.
	NextField key.Binding
	PrevField key.Binding
	// Submit starts the upload.
	Submit key.Binding
	// ClearJobs forgets finished upload jobs.
	ClearJobs key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),

		NextPage: key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "prev page")),

		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "asc/desc")),
		SortKey:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort by")),
		TypeFilter: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "type")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Refresh:    key.NewBinding(key.WithKeys("R", "ctrl+r"), key.WithHelp("R", "refresh")),

		ToggleEncrypted: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "encrypt")),
		Delete:          key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),

		Upload:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "upload")),
		ClearJobs: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear jobs")),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Upload, k.Help, k.Quit}
}

// DocumentsHelp returns keybindings for the documents view footer.
func (k *KeyMap) DocumentsHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.PrevPage, k.Filter, k.Sort, k.TypeFilter, k.Reset, k.Delete}
}

// UploadHelp returns keybindings for the upload view footer.
func (k *KeyMap) UploadHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Submit, k.ClearJobs, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage},
		{k.Filter, k.Sort, k.SortKey, k.TypeFilter, k.Reset, k.Refresh},
		{k.ToggleEncrypted, k.Delete, k.Upload},
		{k.NextField, k.PrevField, k.Submit, k.ClearJobs},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
