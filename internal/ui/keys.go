package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding
	Confirm    key.Binding

	// Quotes
	NextQuote   key.Binding
	AddQuote    key.Binding
	CycleFilter key.Binding

	// Sync
	Sync           key.Binding
	ToggleAutoSync key.Binding
	Conflicts      key.Binding

	// Data
	Export   key.Binding
	Import   key.Binding
	ClearAll key.Binding
	Logs     key.Binding

	// Logs view
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Forms
	NextField key.Binding
	PrevField key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),

		NextQuote: key.NewBinding(
			key.WithKeys(" ", "n"),
			key.WithHelp("space/n", "New quote"),
		),
		AddQuote: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add quote"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle category"),
		),

		Sync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Sync now"),
		),
		ToggleAutoSync: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "Toggle auto-sync"),
		),
		Conflicts: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Resolve conflicts"),
		),

		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Export JSON"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Import JSON"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Clear all data"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Toggle logs"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "Up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "Down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Page down"),
		),

		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous field"),
		),
	}
}

// ShortHelp returns bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextQuote, k.AddQuote, k.CycleFilter, k.Sync, k.Help, k.Quit}
}

// FullHelp returns all bindings grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextQuote, k.AddQuote, k.CycleFilter},
		{k.Sync, k.ToggleAutoSync, k.Conflicts},
		{k.Export, k.Import, k.ClearAll, k.Logs},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
