package quote

import (
	"strings"
	"time"
)

// Source values recorded on a Quote.
const (
	SourceLocal  = "local"
	SourceServer = "server"
)

// Quote is a single categorized quote.
type Quote struct {
	Text         string    `json:"text"`
	Category     string    `json:"category"`
	Source       string    `json:"source,omitempty"`
	ServerID     string    `json:"serverId,omitempty"`
	LastModified time.Time `json:"lastModified,omitzero"`
}

// Key identifies a quote for deduplication: text and category, case-insensitive.
func (q Quote) Key() string {
	return Key(q.Text, q.Category)
}

// TextKey identifies a quote for conflict matching: text only.
func (q Quote) TextKey() string {
	return normalizeText(q.Text)
}

// FromServer reports whether the quote originated from, or was pushed to, the remote.
func (q Quote) FromServer() bool {
	return q.Source == SourceServer
}

// Key builds the deduplication key for a text/category pair.
func Key(text, category string) string {
	return normalizeText(text) + "\x00" + NormalizeCategory(category)
}

// NormalizeCategory trims and lower-cases a category name.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

func normalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// New validates and normalizes a text/category pair into a Quote.
func New(text, category string) (Quote, error) {
	text = strings.TrimSpace(text)
	category = NormalizeCategory(category)

	var issues []Issue
	if text == "" {
		issues = append(issues, Issue{Index: -1, Field: "text", Reason: "is empty"})
	}
	if category == "" {
		issues = append(issues, Issue{Index: -1, Field: "category", Reason: "is empty"})
	}
	if len(issues) > 0 {
		return Quote{}, &ValidationError{Issues: issues}
	}
	return Quote{Text: text, Category: category}, nil
}

// Normalize returns q with trimmed text and a normalized category.
func Normalize(q Quote) Quote {
	q.Text = strings.TrimSpace(q.Text)
	q.Category = NormalizeCategory(q.Category)
	return q
}

// Valid reports whether q has non-empty text and category after normalization.
func Valid(q Quote) bool {
	q = Normalize(q)
	return q.Text != "" && q.Category != ""
}

// Dedupe returns quotes with later identity collisions dropped, preserving order,
// and the number of entries that were dropped.
func Dedupe(quotes []Quote) ([]Quote, int) {
	if len(quotes) == 0 {
		return nil, 0
	}
	seen := make(map[string]struct{}, len(quotes))
	out := make([]Quote, 0, len(quotes))
	dropped := 0
	for _, q := range quotes {
		key := q.Key()
		if _, ok := seen[key]; ok {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out, dropped
}

// Clone returns an independent copy of quotes.
func Clone(quotes []Quote) []Quote {
	if len(quotes) == 0 {
		return nil
	}
	dup := make([]Quote, len(quotes))
	copy(dup, quotes)
	return dup
}

// Defaults returns the built-in collection installed on first run.
func Defaults() []Quote {
	return []Quote{
		{Text: "The only way to do great work is to love what you do.", Category: "motivation", Source: SourceLocal},
		{Text: "Life is what happens to you while you're busy making other plans.", Category: "life", Source: SourceLocal},
		{Text: "The future belongs to those who believe in the beauty of their dreams.", Category: "dreams", Source: SourceLocal},
	}
}
