package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops detail.
	LayoutCompactWidth = 80

	// QuoteMaxWidth caps the wrap width of the quote card.
	QuoteMaxWidth = 72
)

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log lines to keep in memory.
	LogBufferLimit = 2000
)

// Timing constants.
const (
	// DefaultUIInterval is the header refresh interval.
	DefaultUIInterval = time.Second

	// StatusMessageTTL is how long a flash message stays in the footer.
	StatusMessageTTL = 4 * time.Second
)
