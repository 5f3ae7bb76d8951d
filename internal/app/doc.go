// Package app is quoter's composition root.
//
// New loads configuration and preferences, opens the durable store (badger or
// SQLite) and the in-memory session store, builds the remote client and the
// sync engine, and loads the quote collection. The resulting App is the one
// explicit piece of application state; the CLI commands and the TUI both go
// through its methods rather than reaching into the packages directly.
//
//	config.Load ─┐
//	prefs.Load  ─┤
//	kv.Open     ─┼─> state.Store.Load ─> syncer.New ─> App
//	session     ─┤
//	remote      ─┘
//
// Start is only needed for long-running sessions: it starts the connectivity
// pinger and, if enabled in prefs or config, auto-sync. Close stops both and
// releases storage.
//
// Nothing here is fatal once New succeeds. Storage and network problems are
// logged and surfaced to the caller, and the in-memory collection stays
// authoritative.
package app
