// Package session holds per-run state that should not outlive the process:
// the last viewed quote and the last successful sync time.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/five82/quoter/internal/kv"
	"github.com/five82/quoter/internal/quote"
)

// Session storage keys.
const (
	KeyLastViewed = "last_viewed"
	KeyLastSync   = "last_sync"
)

// Viewed is the last quote shown to the user.
type Viewed struct {
	Quote    quote.Quote `json:"quote"`
	ViewedAt time.Time   `json:"viewedAt"`
}

// Store wraps a kv.Store with typed accessors. Missing or undecodable
// values read as absent.
type Store struct {
	kv kv.Store
}

// New wraps backend.
func New(backend kv.Store) *Store {
	return &Store{kv: backend}
}

// NewMemory returns a Store on an in-memory badger instance.
func NewMemory() (*Store, error) {
	backend, err := kv.OpenMemory()
	if err != nil {
		return nil, &quote.StorageError{Op: "open", Key: "session", Err: err}
	}
	return New(backend), nil
}

// SetLastViewed records q as the last quote shown.
func (s *Store) SetLastViewed(ctx context.Context, q quote.Quote, at time.Time) error {
	payload, err := json.Marshal(Viewed{Quote: q, ViewedAt: at.UTC()})
	if err != nil {
		return &quote.StorageError{Op: "encode", Key: KeyLastViewed, Err: err}
	}
	if err := s.kv.Put(ctx, KeyLastViewed, payload); err != nil {
		return &quote.StorageError{Op: "save", Key: KeyLastViewed, Err: err}
	}
	return nil
}

// LastViewed returns the last quote shown, if any.
func (s *Store) LastViewed(ctx context.Context) (Viewed, bool) {
	raw, err := s.kv.Get(ctx, KeyLastViewed)
	if err != nil {
		return Viewed{}, false
	}
	var v Viewed
	if err := json.Unmarshal(raw, &v); err != nil || v.Quote.Text == "" {
		return Viewed{}, false
	}
	return v, true
}

// SetLastSync records t as the last successful sync.
func (s *Store) SetLastSync(ctx context.Context, t time.Time) error {
	if err := s.kv.Put(ctx, KeyLastSync, []byte(t.UTC().Format(time.RFC3339Nano))); err != nil {
		return &quote.StorageError{Op: "save", Key: KeyLastSync, Err: err}
	}
	return nil
}

// LastSync returns the last successful sync time, if any.
func (s *Store) LastSync(ctx context.Context) (time.Time, bool) {
	raw, err := s.kv.Get(ctx, KeyLastSync)
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Clear removes both keys.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{KeyLastViewed, KeyLastSync} {
		if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, kv.ErrNotFound) {
			errs = append(errs, &quote.StorageError{Op: "delete", Key: key, Err: err})
		}
	}
	return errors.Join(errs...)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.kv.Close()
}
