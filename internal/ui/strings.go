package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/quoter/internal/state"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateMiddle shortens a path by removing characters from the middle.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	keep := limit - 1
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-suffix:])
}

// humanizeSince renders how long ago t was, "never" for the zero time.
func humanizeSince(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

// nextFilter returns the filter after current in the cycle all → categories → all.
func nextFilter(current string, categories []string) string {
	if current == "" || current == state.FilterAll {
		if len(categories) == 0 {
			return state.FilterAll
		}
		return categories[0]
	}
	for i, c := range categories {
		if c == current && i+1 < len(categories) {
			return categories[i+1]
		}
	}
	return state.FilterAll
}
