package state

import (
	"context"

	"github.com/five82/quoter/internal/quote"
)

// FilterAll is the filter value that selects every quote.
const FilterAll = "all"

// FilterStatus tells the presentation layer which empty state, if any, applies.
type FilterStatus int

const (
	FilterOK FilterStatus = iota
	FilterNoQuotesInCategory
	FilterStoreEmpty
)

func (f FilterStatus) String() string {
	switch f {
	case FilterNoQuotesInCategory:
		return "no quotes in category"
	case FilterStoreEmpty:
		return "store is empty"
	default:
		return "ok"
	}
}

func normalizeFilter(category string) string {
	c := quote.NormalizeCategory(category)
	if c == "" {
		return FilterAll
	}
	return c
}

// SetFilter selects category (or "all"), recomputes the filtered view and
// persists the choice. The filter is applied even when persisting fails.
func (s *Store) SetFilter(ctx context.Context, category string) (FilterStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = normalizeFilter(category)
	s.refilterLocked()
	status := s.statusLocked()

	if s.kv == nil {
		return status, nil
	}
	if err := s.kv.Put(ctx, KeyFilter, []byte(s.filter)); err != nil {
		return status, &quote.StorageError{Op: "save", Key: KeyFilter, Err: err}
	}
	return status, nil
}

// Filter returns the current filter value.
func (s *Store) Filter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Filtered returns a copy of the quotes matching the current filter.
func (s *Store) Filtered() []quote.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return quote.Clone(s.filtered)
}

// Status reports the empty state for the current filter.
func (s *Store) Status() FilterStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked()
}

func (s *Store) statusLocked() FilterStatus {
	switch {
	case len(s.quotes) == 0:
		return FilterStoreEmpty
	case len(s.filtered) == 0:
		return FilterNoQuotesInCategory
	default:
		return FilterOK
	}
}

// PickRandom draws one quote uniformly from the filtered view. When the view
// is empty but the store is not, it draws from the whole store instead. The
// boolean is false only when the store is empty.
func (s *Store) PickRandom() (quote.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool := s.filtered
	if len(pool) == 0 {
		pool = s.quotes
	}
	if len(pool) == 0 {
		return quote.Quote{}, false
	}
	return pool[s.intn(len(pool))], true
}

func (s *Store) refilterLocked() {
	if s.filter == FilterAll || s.filter == "" {
		s.filtered = quote.Clone(s.quotes)
		return
	}
	var out []quote.Quote
	for _, q := range s.quotes {
		if q.Category == s.filter {
			out = append(out, q)
		}
	}
	s.filtered = out
}
