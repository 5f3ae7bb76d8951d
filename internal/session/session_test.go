package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/quoter/internal/quote"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_AbsentValues(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, ok := s.LastViewed(ctx)
	assert.False(t, ok)
	_, ok = s.LastSync(ctx)
	assert.False(t, ok)
	assert.NoError(t, s.Clear(ctx))
}

func TestStore_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 4, 5, 6, 7, 8, time.UTC)
	q := quote.Quote{Text: "Stay curious.", Category: "life", Source: quote.SourceLocal}

	require.NoError(t, s.SetLastViewed(ctx, q, at))
	require.NoError(t, s.SetLastSync(ctx, at))

	viewed, ok := s.LastViewed(ctx)
	require.True(t, ok)
	assert.Equal(t, q, viewed.Quote)
	assert.True(t, viewed.ViewedAt.Equal(at))

	last, ok := s.LastSync(ctx)
	require.True(t, ok)
	assert.True(t, last.Equal(at))

	require.NoError(t, s.Clear(ctx))
	_, ok = s.LastViewed(ctx)
	assert.False(t, ok)
	_, ok = s.LastSync(ctx)
	assert.False(t, ok)
}

func TestStore_GarbageReadsAsAbsent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.kv.Put(ctx, KeyLastSync, []byte("yesterday")))
	require.NoError(t, s.kv.Put(ctx, KeyLastViewed, []byte("{")))

	_, ok := s.LastSync(ctx)
	assert.False(t, ok)
	_, ok = s.LastViewed(ctx)
	assert.False(t, ok)
}
