// Package kv is the key-value layer behind quoter's durable and session
// storage. Durable data lives in badger (default) or SQLite; session data
// lives in an in-memory badger instance that disappears with the process.
package kv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// ErrQuotaExceeded is returned by Put when a value is larger than the quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Store is a minimal byte-oriented key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// Open opens the durable store for driver under dir.
func Open(driver, dir string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverBadger:
		return OpenBadger(filepath.Join(dir, "badger"))
	case DriverSQLite:
		return OpenSQLite(filepath.Join(dir, "quoter.db"))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// quotaStore rejects values larger than max bytes.
type quotaStore struct {
	Store
	max int
}

// WithQuota wraps s so that Put fails with ErrQuotaExceeded for values over
// max bytes. A non-positive max disables the check.
func WithQuota(s Store, max int) Store {
	if max <= 0 {
		return s
	}
	return &quotaStore{Store: s, max: max}
}

func (q *quotaStore) Put(ctx context.Context, key string, value []byte) error {
	if len(value) > q.max {
		return fmt.Errorf("put %q (%d bytes, limit %d): %w", key, len(value), q.max, ErrQuotaExceeded)
	}
	return q.Store.Put(ctx, key, value)
}
