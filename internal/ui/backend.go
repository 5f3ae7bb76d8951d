package ui

import (
	"context"

	"github.com/five82/quoter/internal/codec"
	"github.com/five82/quoter/internal/quote"
	"github.com/five82/quoter/internal/state"
	"github.com/five82/quoter/internal/syncer"
)

// Backend is everything the TUI needs from the application.
type Backend interface {
	ShowRandom(ctx context.Context) (quote.Quote, bool, error)
	LastViewed(ctx context.Context) (quote.Quote, bool)
	AddQuote(ctx context.Context, text, category string) (quote.Quote, error)

	Categories() []string
	SetFilter(ctx context.Context, category string) (state.FilterStatus, error)
	Filter() string
	Counts() (filtered, total int)

	Sync(ctx context.Context) (syncer.Result, error)
	Resolve(ctx context.Context, r syncer.Resolution) (syncer.Result, error)
	SyncState() syncer.State
	OnSyncChange(fn func(syncer.State)) (cancel func())
	SetAutoSync(enabled bool) error

	Export(dir string) (string, error)
	ExportDir() string
	ImportFile(ctx context.Context, path string) (codec.Report, error)
	ClearAll(ctx context.Context) error

	SetTheme(name string) error
	LogPath() string
}
