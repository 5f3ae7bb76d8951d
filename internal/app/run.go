package app

import (
	"context"

	"github.com/five82/quoter/internal/ui"
)

var _ ui.Backend = (*App)(nil)

// Run boots quoter's TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	a, err := New(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	a.Start(ctx)

	return ui.Run(ui.Options{
		Context:   ctx,
		Backend:   a,
		ThemeName: a.Theme(),
	})
}
