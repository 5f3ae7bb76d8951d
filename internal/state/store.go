package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/quoter/internal/kv"
	"github.com/five82/quoter/internal/quote"
)

// Durable storage keys.
const (
	KeyQuotes = "quotes"
	KeyFilter = "filter"
)

// LoadReport describes where Load got its data from.
type LoadReport struct {
	FromDefaults bool
	Count        int
	Filter       string
	Warning      error // storage problem encountered while loading, if any
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger used for storage warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRand replaces the random index source used by PickRandom. intn must
// return a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(s *Store) {
		if intn != nil {
			s.intn = intn
		}
	}
}

// WithClock replaces the clock used to stamp new quotes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the quote collection shared by the filter, codec and sync
// components. Every mutation updates memory first and then mirrors the whole
// collection to the durable key-value store under the same lock.
type Store struct {
	mu  sync.RWMutex
	kv  kv.Store
	log *zap.Logger

	intn func(n int) int
	now  func() time.Time

	quotes   []quote.Quote
	filter   string
	filtered []quote.Quote
}

// New creates an empty store backed by backend. A nil backend keeps the
// collection in memory only.
func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:     backend,
		log:    zap.NewNop(),
		intn:   rand.IntN,
		now:    time.Now,
		filter: FilterAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load populates the store from durable storage. When storage is empty,
// unreadable or holds no valid quotes the default collection is installed
// and persisted. Load never fails; problems are returned in the report.
func (s *Store) Load(ctx context.Context) LoadReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report LoadReport
	loaded, err := s.readQuotes(ctx)
	if err != nil {
		s.log.Warn("stored quotes unreadable, installing defaults", zap.Error(err))
		report.Warning = err
	}
	if len(loaded) == 0 {
		loaded = quote.Defaults()
		stamp := s.now()
		for i := range loaded {
			loaded[i].LastModified = stamp
		}
		report.FromDefaults = true
		s.quotes = loaded
		if perr := s.persistLocked(ctx); perr != nil {
			report.Warning = errors.Join(report.Warning, perr)
		}
	} else {
		s.quotes = loaded
	}

	filter, ferr := s.readFilter(ctx)
	if ferr != nil {
		s.log.Warn("stored filter unreadable", zap.Error(ferr))
		report.Warning = errors.Join(report.Warning, ferr)
	}
	s.filter = filter
	s.refilterLocked()

	report.Count = len(s.quotes)
	report.Filter = s.filter
	return report
}

func (s *Store) readQuotes(ctx context.Context) ([]quote.Quote, error) {
	if s.kv == nil {
		return nil, nil
	}
	raw, err := s.kv.Get(ctx, KeyQuotes)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &quote.StorageError{Op: "load", Key: KeyQuotes, Err: err}
	}
	var stored []quote.Quote
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, &quote.StorageError{Op: "decode", Key: KeyQuotes, Err: err}
	}
	valid := stored[:0]
	for _, q := range stored {
		if q = quote.Normalize(q); q.Text != "" && q.Category != "" {
			valid = append(valid, q)
		}
	}
	deduped, _ := quote.Dedupe(valid)
	return deduped, nil
}

func (s *Store) readFilter(ctx context.Context) (string, error) {
	if s.kv == nil {
		return FilterAll, nil
	}
	raw, err := s.kv.Get(ctx, KeyFilter)
	if errors.Is(err, kv.ErrNotFound) {
		return FilterAll, nil
	}
	if err != nil {
		return FilterAll, &quote.StorageError{Op: "load", Key: KeyFilter, Err: err}
	}
	return normalizeFilter(string(raw)), nil
}

// Save writes the current collection to durable storage. On failure the
// in-memory collection is left untouched and a *quote.StorageError returned.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}
	payload, err := json.Marshal(s.quotes)
	if err != nil {
		return &quote.StorageError{Op: "encode", Key: KeyQuotes, Err: err}
	}
	if err := s.kv.Put(ctx, KeyQuotes, payload); err != nil {
		s.log.Warn("persist quotes failed", zap.Int("count", len(s.quotes)), zap.Error(err))
		return &quote.StorageError{Op: "save", Key: KeyQuotes, Err: err}
	}
	return nil
}

// Add validates and appends a local quote. Empty fields and identity
// collisions are rejected with a *quote.ValidationError and leave the store
// unchanged. A *quote.StorageError means the quote was added in memory but
// could not be persisted.
func (s *Store) Add(ctx context.Context, text, category string) (quote.Quote, error) {
	q, err := quote.New(text, category)
	if err != nil {
		return quote.Quote{}, err
	}
	q.Source = quote.SourceLocal
	q.LastModified = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := q.Key()
	for _, existing := range s.quotes {
		if existing.Key() == key {
			return quote.Quote{}, &quote.ValidationError{
				Issues: []quote.Issue{{Index: -1, Field: "quote", Reason: fmt.Sprintf("already exists in category %q", q.Category)}},
				Err:    quote.ErrDuplicate,
			}
		}
	}

	s.quotes = append(s.quotes, q)
	s.refilterLocked()
	s.log.Debug("quote added", zap.String("category", q.Category), zap.Int("total", len(s.quotes)))
	return q, s.persistLocked(ctx)
}

// Merge appends every incoming quote whose identity is not already present,
// keeping incoming order. It returns how many were added and how many were
// dropped as duplicates of the store or of earlier incoming entries.
func (s *Store) Merge(ctx context.Context, incoming []quote.Quote) (added, duplicates int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.quotes)+len(incoming))
	for _, q := range s.quotes {
		seen[q.Key()] = struct{}{}
	}
	for _, q := range incoming {
		q = quote.Normalize(q)
		if q.Text == "" || q.Category == "" {
			continue
		}
		key := q.Key()
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
		if q.LastModified.IsZero() {
			q.LastModified = s.now()
		}
		s.quotes = append(s.quotes, q)
		added++
	}
	if added == 0 {
		return 0, duplicates, nil
	}
	s.refilterLocked()
	return added, duplicates, s.persistLocked(ctx)
}

// Mutate runs fn against a copy of the current collection while holding the
// write lock and installs the result. Callers that fetched data while
// unlocked must compute their changes inside fn so they see the latest
// collection. Returning an error from fn leaves the store unchanged.
func (s *Store) Mutate(ctx context.Context, fn func(current []quote.Quote) ([]quote.Quote, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(quote.Clone(s.quotes))
	if err != nil {
		return err
	}
	s.quotes = sanitize(next)
	s.refilterLocked()
	return s.persistLocked(ctx)
}

// Replace swaps the whole collection for quotes.
func (s *Store) Replace(ctx context.Context, quotes []quote.Quote) error {
	return s.Mutate(ctx, func([]quote.Quote) ([]quote.Quote, error) {
		return quotes, nil
	})
}

// Clear empties the collection, resets the filter and purges both durable keys.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Memory is only reset once storage no longer holds the old collection.
	if s.kv != nil {
		var errs []error
		for _, key := range []string{KeyQuotes, KeyFilter} {
			if err := s.kv.Delete(ctx, key); err != nil {
				errs = append(errs, &quote.StorageError{Op: "delete", Key: key, Err: err})
			}
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
	}

	s.quotes = nil
	s.filter = FilterAll
	s.filtered = nil
	return nil
}

// Quotes returns a copy of the collection in insertion order.
func (s *Store) Quotes() []quote.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return quote.Clone(s.quotes)
}

// Len returns the number of stored quotes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes)
}

func sanitize(quotes []quote.Quote) []quote.Quote {
	out := make([]quote.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q = quote.Normalize(q); q.Text != "" && q.Category != "" {
			out = append(out, q)
		}
	}
	deduped, _ := quote.Dedupe(out)
	return deduped
}
