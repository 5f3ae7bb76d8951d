package syncer

import (
	"github.com/five82/quoter/internal/quote"
	"github.com/five82/quoter/internal/remote"
)

// DefaultPalette is the category cycle applied to remote records that carry
// no category of their own.
var DefaultPalette = []string{"inspiration", "life", "motivation", "wisdom", "success"}

// MapRecords converts remote records into server-sourced quotes. Records
// without text are skipped; records without a category take
// palette[i % len(palette)] where i is the record's position in the snapshot.
func MapRecords(records []remote.Record, palette []string) []quote.Quote {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	out := make([]quote.Quote, 0, len(records))
	for i, rec := range records {
		text := rec.QuoteText()
		if text == "" {
			continue
		}
		category := quote.NormalizeCategory(rec.Category)
		if category == "" {
			category = palette[i%len(palette)]
		}
		out = append(out, quote.Quote{
			Text:     text,
			Category: category,
			Source:   quote.SourceServer,
			ServerID: rec.ServerID(),
		})
	}
	return out
}

// DetectConflicts matches remote quotes to local ones by text alone. A remote
// quote conflicts when its text exists locally but never with its category.
// Each remote identity is reported once, paired with the first local quote
// sharing its text.
func DetectConflicts(local, remoteQuotes []quote.Quote) []quote.Conflict {
	if len(local) == 0 || len(remoteQuotes) == 0 {
		return nil
	}
	byText := make(map[string]quote.Quote, len(local))
	keys := make(map[string]struct{}, len(local))
	for _, q := range local {
		if _, ok := byText[q.TextKey()]; !ok {
			byText[q.TextKey()] = q
		}
		keys[q.Key()] = struct{}{}
	}

	var conflicts []quote.Conflict
	reported := make(map[string]struct{})
	for _, rq := range remoteQuotes {
		lq, ok := byText[rq.TextKey()]
		if !ok {
			continue
		}
		if _, same := keys[rq.Key()]; same {
			continue
		}
		if _, dup := reported[rq.Key()]; dup {
			continue
		}
		reported[rq.Key()] = struct{}{}
		conflicts = append(conflicts, quote.Conflict{Local: lq, Server: rq})
	}
	return conflicts
}

// appendMissing returns current plus every incoming quote whose identity is
// absent, and how many were appended.
func appendMissing(current, incoming []quote.Quote) ([]quote.Quote, int) {
	seen := make(map[string]struct{}, len(current)+len(incoming))
	for _, q := range current {
		seen[q.Key()] = struct{}{}
	}
	added := 0
	for _, q := range incoming {
		if _, ok := seen[q.Key()]; ok {
			continue
		}
		seen[q.Key()] = struct{}{}
		current = append(current, q)
		added++
	}
	return current, added
}
