// Package ui provides the Bubble Tea terminal interface for quoter.
//
// # Architecture Overview
//
// The Model talks to the application through the Backend interface and never
// touches storage directly. Every backend call runs inside a tea.Cmd and comes
// back as a message, so Update stays non-blocking while syncs and imports run.
//
// # Package Structure
//
//   - app.go: Model, Update loop, messages, commands and Run
//   - backend.go: the Backend interface implemented by app.App
//   - header.go: status line (counts, category, sync phase) and footer
//   - quote_view.go: quote card and empty states
//   - forms.go: add-quote and import-path forms
//   - modal.go: Modal interface, conflict chooser, confirm dialog
//   - logs.go: log pane fed by logtail
//   - theme.go, keys.go, help.go: palettes, bindings, help overlay
//
// # Sync State
//
// The engine reports state changes from its own goroutines. New subscribes a
// listener that drops states into a buffered channel without blocking;
// waitSyncStateCmd turns each one into a syncStateMsg and re-arms itself.
//
// # Keyboard Shortcuts
//
//	space/n  New quote        s  Sync now         x  Export JSON
//	a        Add quote        A  Toggle auto-sync i  Import JSON
//	f        Cycle category   r  Resolve conflicts D  Clear all data
//	l        Toggle logs      T  Cycle theme      h/?  Help
//	e/ctrl+c Quit
package ui
