package syncer

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/quoter/internal/quote"
)

// PushReport counts the outcome of a PushLocal batch.
type PushReport struct {
	Attempted int
	Pushed    int
	Failed    int
}

// PushLocal sends every quote not yet tagged as server-sourced. Each push is
// independent: failures are logged and counted, never retried, and never stop
// the rest of the batch. Successful pushes are tagged with the server id. The
// returned error is only ever a storage error from recording the tags.
func (e *Engine) PushLocal(ctx context.Context) (PushReport, error) {
	var pending []quote.Quote
	for _, q := range e.store.Quotes() {
		if !q.FromServer() {
			pending = append(pending, q)
		}
	}
	report := PushReport{Attempted: len(pending)}
	if len(pending) == 0 {
		return report, nil
	}

	serverIDs := make([]string, len(pending))
	ok := make([]bool, len(pending))
	var failed atomic.Int32

	var g errgroup.Group
	g.SetLimit(e.pushLimit)
	for i, q := range pending {
		g.Go(func() error {
			rec, err := e.remote.PushQuote(ctx, q)
			if err != nil {
				failed.Add(1)
				e.log.Warn("push failed",
					zap.String("category", q.Category),
					zap.Error(&quote.NetworkError{Op: "push", Err: err}))
				return nil
			}
			serverIDs[i] = rec.ServerID()
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	report.Failed = int(failed.Load())
	report.Pushed = report.Attempted - report.Failed
	if report.Pushed == 0 {
		return report, nil
	}

	tags := make(map[string]string, report.Pushed)
	for i, q := range pending {
		if ok[i] {
			tags[q.Key()] = serverIDs[i]
		}
	}
	err := e.store.Mutate(ctx, func(current []quote.Quote) ([]quote.Quote, error) {
		for i := range current {
			if id, found := tags[current[i].Key()]; found && !current[i].FromServer() {
				current[i].Source = quote.SourceServer
				current[i].ServerID = id
			}
		}
		return current, nil
	})
	return report, err
}
