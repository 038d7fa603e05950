package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the editor.
type KeyMap struct {
	// Global
	Open key.Binding
	Push key.Binding
	Quit key.Binding

	// Command mode (editor unfocused)
	Edit     key.Binding
	Title    key.Binding
	Format   key.Binding
	Validate key.Binding
	Draft    key.Binding
	Repull   key.Binding
	Help     key.Binding

	// Mode switching / dialogs
	Escape key.Binding
	Enter  key.Binding
	Yes    key.Binding
	No     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "open page"),
		),
		Push: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "push"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Edit: key.NewBinding(
			key.WithKeys("i", "enter"),
			key.WithHelp("i", "edit"),
		),
		Title: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "edit title"),
		),
		Format: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "pretty-print"),
		),
		Validate: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "validate"),
		),
		Draft: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "save draft"),
		),
		Repull: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "re-pull"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back/unfocus"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Push, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Repull, k.Push, k.Draft},
		{k.Edit, k.Title, k.Format, k.Validate},
		{k.Help, k.Escape, k.Quit},
	}
}
