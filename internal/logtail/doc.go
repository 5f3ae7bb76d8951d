// Package logtail reads the tail of quoter's log file for the TUI log pane.
//
// Read keeps a ring buffer of maxLines while scanning the file once, so the
// memory used does not depend on the log size. A missing file yields no lines
// and no error.
//
// The log file holds zap JSON lines. Parse decodes one line into an Entry and
// Format renders it compactly:
//
//	{"level":"info","ts":"2025-10-08T21:01:05Z","logger":"sync","msg":"sync finished","added":2}
//	21:01:05 INFO [sync] sync finished added=2
//
// Extra fields are printed as key=value in key order. Lines that are not JSON
// are passed through unchanged by FormatLines.
package logtail
