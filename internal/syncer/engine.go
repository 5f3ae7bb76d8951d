package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/quoter/internal/quote"
	"github.com/five82/quoter/internal/remote"
	"github.com/five82/quoter/internal/schedule"
	"github.com/five82/quoter/internal/state"
)

var (
	// ErrSyncInProgress is returned when a cycle or resolution is already running.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrNoPendingConflicts is returned by Resolve when there is nothing to resolve.
	ErrNoPendingConflicts = errors.New("no pending conflicts")
	// ErrSuperseded is returned when Reset ran while a cycle was in flight;
	// the cycle's results are discarded.
	ErrSuperseded = errors.New("sync superseded by reset")

	errNoChange = errors.New("no change")
)

// Phase is the sync cycle state.
type Phase int

const (
	Idle Phase = iota
	Syncing
	Online
	Conflict
	Offline
)

func (p Phase) String() string {
	switch p {
	case Syncing:
		return "syncing"
	case Online:
		return "online"
	case Conflict:
		return "conflict"
	case Offline:
		return "offline"
	default:
		return "idle"
	}
}

// Resolution picks how pending conflicts are settled.
type Resolution int

const (
	// UseServer replaces the local collection with the remote snapshot.
	UseServer Resolution = iota
	// UseLocal keeps the local collection and pushes it upstream.
	UseLocal
	// Merge keeps both variants of every conflicting quote.
	Merge
)

func (r Resolution) String() string {
	switch r {
	case UseServer:
		return "server"
	case UseLocal:
		return "local"
	case Merge:
		return "merge"
	default:
		return fmt.Sprintf("resolution(%d)", int(r))
	}
}

// ParseResolution accepts "server", "local" or "merge".
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "server", "use-server":
		return UseServer, nil
	case "local", "use-local":
		return UseLocal, nil
	case "merge":
		return Merge, nil
	default:
		return 0, fmt.Errorf("unknown resolution %q (want server, local or merge)", s)
	}
}

// Remote is the subset of remote.Client the engine uses.
type Remote interface {
	FetchRecords(ctx context.Context, limit int) ([]remote.Record, error)
	PushQuote(ctx context.Context, q quote.Quote) (remote.Record, error)
}

// SyncRecorder persists the last successful sync time.
type SyncRecorder interface {
	SetLastSync(ctx context.Context, t time.Time) error
	LastSync(ctx context.Context) (time.Time, bool)
}

// State is a snapshot of the engine's sync state.
type State struct {
	Phase            Phase
	Online           bool
	AutoSync         bool
	LastSync         time.Time // zero until the first successful cycle
	PendingConflicts []quote.Conflict
	LastError        string
}

// Result summarizes one cycle or resolution.
type Result struct {
	Phase     Phase
	Fetched   int
	Added     int
	Conflicts []quote.Conflict
	Push      PushReport
}

// Engine runs sync cycles between the quote store and the remote.
type Engine struct {
	store    *state.Store
	remote   Remote
	recorder SyncRecorder
	sched    schedule.Scheduler
	network  schedule.NetworkObserver
	log      *zap.Logger
	now      func() time.Time

	interval     time.Duration
	limit        int
	palette      []string
	pushLimit    int
	cycleTimeout time.Duration

	cycle sync.Mutex

	mu            sync.Mutex
	gen           uint64 // bumped by Reset
	state         State
	pendingRemote []quote.Quote
	listeners     map[int]func(State)
	nextListener  int
	ctx           context.Context
	cancelNetwork func()
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRecorder persists the last sync time, typically to session storage.
func WithRecorder(r SyncRecorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithScheduler replaces the auto-sync timer.
func WithScheduler(s schedule.Scheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.sched = s
		}
	}
}

// WithNetwork subscribes the engine to connectivity transitions on Start.
func WithNetwork(n schedule.NetworkObserver) Option {
	return func(e *Engine) { e.network = n }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithInterval sets the auto-sync interval.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithLimit sets the remote snapshot size.
func WithLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithPalette sets the categories assigned to uncategorized remote records.
func WithPalette(p []string) Option {
	return func(e *Engine) {
		if len(p) > 0 {
			e.palette = append([]string(nil), p...)
		}
	}
}

// WithPushConcurrency bounds how many pushes run at once.
func WithPushConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pushLimit = n
		}
	}
}

// New builds an Engine. Auto-sync starts disabled.
func New(store *state.Store, client Remote, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		remote:       client,
		sched:        schedule.NewTicker(),
		log:          zap.NewNop(),
		now:          time.Now,
		interval:     30 * time.Second,
		limit:        10,
		palette:      DefaultPalette,
		pushLimit:    4,
		cycleTimeout: 20 * time.Second,
		state:        State{Phase: Idle, Online: true},
		listeners:    make(map[int]func(State)),
		ctx:          context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start restores the last sync time, if the recorder still holds one, and
// subscribes to connectivity changes.
// Background cycles use ctx.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	e.ctx = ctx
	if e.recorder != nil {
		if t, ok := e.recorder.LastSync(ctx); ok {
			e.state.LastSync = t
		}
	}
	network := e.network
	e.mu.Unlock()

	if network == nil {
		return
	}
	cancel := network.Subscribe(e.onNetwork)
	e.mu.Lock()
	e.cancelNetwork = cancel
	e.mu.Unlock()
}

// Close stops auto-sync and the connectivity subscription.
func (e *Engine) Close() {
	e.sched.Stop()
	e.mu.Lock()
	cancel := e.cancelNetwork
	e.cancelNetwork = nil
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// State returns a copy of the current sync state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() State {
	s := e.state
	if len(s.PendingConflicts) > 0 {
		s.PendingConflicts = append([]quote.Conflict(nil), s.PendingConflicts...)
	}
	return s
}

// OnChange registers fn to receive every state change. fn runs on the
// goroutine that made the change and must not block.
func (e *Engine) OnChange(fn func(State)) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// update applies fn to the state under the lock and then notifies listeners.
func (e *Engine) update(fn func(s *State)) {
	e.apply(func(s *State) bool {
		fn(s)
		return true
	})
}

// updateGen applies fn only if no Reset happened since gen was taken.
func (e *Engine) updateGen(gen uint64, fn func(s *State)) bool {
	return e.apply(func(s *State) bool {
		if e.gen != gen {
			return false
		}
		fn(s)
		return true
	})
}

func (e *Engine) apply(fn func(s *State) bool) bool {
	e.mu.Lock()
	if !fn(&e.state) {
		e.mu.Unlock()
		return false
	}
	snap := e.snapshotLocked()
	fns := make([]func(State), 0, len(e.listeners))
	for _, l := range e.listeners {
		fns = append(fns, l)
	}
	e.mu.Unlock()
	for _, l := range fns {
		l(snap)
	}
	return true
}

func (e *Engine) generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

func (e *Engine) superseded(gen uint64) bool {
	return e.generation() != gen
}

// SetAutoSync starts or stops the recurring sync timer. In-flight cycles
// are not interrupted.
func (e *Engine) SetAutoSync(enabled bool) {
	e.mu.Lock()
	changed := e.state.AutoSync != enabled
	e.mu.Unlock()
	if !changed {
		return
	}

	if enabled {
		e.sched.Start(e.interval, e.tick)
	} else {
		e.sched.Stop()
	}
	e.update(func(s *State) { s.AutoSync = enabled })
	e.log.Info("auto-sync toggled", zap.Bool("enabled", enabled), zap.Duration("interval", e.interval))
}

// Reset stops auto-sync and returns the sync state to its defaults. A cycle
// or resolution still in flight finishes without touching the store, the
// recorder or the state.
func (e *Engine) Reset() {
	e.sched.Stop()
	e.update(func(s *State) {
		e.gen++
		e.pendingRemote = nil
		online := s.Online
		*s = State{Phase: Idle, Online: online}
	})
}

func (e *Engine) tick() {
	e.mu.Lock()
	base := e.ctx
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(base, e.cycleTimeout)
	defer cancel()
	if _, err := e.Sync(ctx); err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			e.log.Debug("sync tick dropped, cycle in flight")
			return
		}
		e.log.Debug("background sync ended with error", zap.Error(err))
	}
}

func (e *Engine) onNetwork(online bool) {
	e.update(func(s *State) { s.Online = online })
	e.log.Info("network availability changed", zap.Bool("online", online))

	e.mu.Lock()
	auto := e.state.AutoSync
	e.mu.Unlock()
	if online && auto {
		e.tick()
	}
}

// FetchRemote retrieves and maps the remote snapshot.
func (e *Engine) FetchRemote(ctx context.Context) ([]quote.Quote, error) {
	records, err := e.remote.FetchRecords(ctx, e.limit)
	if err != nil {
		return nil, &quote.NetworkError{Op: "fetch", Err: err}
	}
	mapped := MapRecords(records, e.palette)
	stamp := e.now()
	for i := range mapped {
		mapped[i].LastModified = stamp
	}
	return mapped, nil
}

// Sync runs one full cycle: fetch, detect conflicts, merge, push. With
// conflicts the store is left untouched and a *quote.ConflictError is
// returned; the conflicts stay pending until Resolve.
func (e *Engine) Sync(ctx context.Context) (Result, error) {
	if !e.cycle.TryLock() {
		return Result{}, ErrSyncInProgress
	}
	defer e.cycle.Unlock()

	gen := e.generation()
	e.updateGen(gen, func(s *State) { s.Phase = Syncing })
	e.log.Debug("sync started")

	remoteQuotes, err := e.FetchRemote(ctx)
	if e.superseded(gen) {
		return e.discard("sync")
	}
	if err != nil {
		e.fail(gen, err)
		return Result{Phase: Offline}, err
	}

	var (
		conflicts []quote.Conflict
		added     int
	)
	// The store may have changed while the fetch was in flight; decide
	// against the collection as it is now.
	merr := e.store.Mutate(ctx, func(current []quote.Quote) ([]quote.Quote, error) {
		if e.superseded(gen) {
			return nil, ErrSuperseded
		}
		conflicts = DetectConflicts(current, remoteQuotes)
		if len(conflicts) > 0 {
			return nil, errNoChange
		}
		var merged []quote.Quote
		merged, added = appendMissing(current, remoteQuotes)
		if added == 0 {
			return nil, errNoChange
		}
		return merged, nil
	})
	if errors.Is(merr, errNoChange) {
		merr = nil
	}
	if errors.Is(merr, ErrSuperseded) {
		return e.discard("sync")
	}

	res := Result{Fetched: len(remoteQuotes), Added: added, Conflicts: conflicts}

	if len(conflicts) > 0 {
		ok := e.updateGen(gen, func(s *State) {
			e.pendingRemote = remoteQuotes
			s.Phase = Conflict
			s.Online = true
			s.PendingConflicts = conflicts
			s.LastError = ""
		})
		if !ok {
			return e.discard("sync")
		}
		e.log.Info("sync halted on conflicts", zap.Int("conflicts", len(conflicts)))
		res.Phase = Conflict
		return res, &quote.ConflictError{Conflicts: conflicts}
	}

	if e.superseded(gen) {
		return e.discard("sync")
	}
	push, perr := e.PushLocal(ctx)
	res.Push = push
	res.Phase = Online
	if !e.succeed(ctx, gen) {
		return e.discard("sync")
	}
	e.log.Info("sync finished",
		zap.Int("fetched", res.Fetched),
		zap.Int("added", res.Added),
		zap.Int("pushed", push.Pushed),
		zap.Int("push_failed", push.Failed))
	return res, errors.Join(merr, perr)
}

// Resolve settles the pending conflicts from the last cycle.
func (e *Engine) Resolve(ctx context.Context, r Resolution) (Result, error) {
	if !e.cycle.TryLock() {
		return Result{}, ErrSyncInProgress
	}
	defer e.cycle.Unlock()

	e.mu.Lock()
	gen := e.gen
	conflicts := e.state.PendingConflicts
	remoteQuotes := quote.Clone(e.pendingRemote)
	e.mu.Unlock()
	if len(conflicts) == 0 {
		return Result{}, ErrNoPendingConflicts
	}

	res := Result{Phase: Online, Fetched: len(remoteQuotes), Conflicts: conflicts}
	var errs []error

	switch r {
	case UseServer:
		deduped, _ := quote.Dedupe(remoteQuotes)
		err := e.store.Mutate(ctx, func([]quote.Quote) ([]quote.Quote, error) {
			if e.superseded(gen) {
				return nil, ErrSuperseded
			}
			return deduped, nil
		})
		if errors.Is(err, ErrSuperseded) {
			return e.discard("resolution")
		}
		errs = append(errs, err)
		res.Added = len(deduped)
	case UseLocal:
		if e.superseded(gen) {
			return e.discard("resolution")
		}
		push, err := e.PushLocal(ctx)
		res.Push = push
		errs = append(errs, err)
	case Merge:
		err := e.store.Mutate(ctx, func(current []quote.Quote) ([]quote.Quote, error) {
			if e.superseded(gen) {
				return nil, ErrSuperseded
			}
			var merged []quote.Quote
			merged, res.Added = appendMissing(current, remoteQuotes)
			return merged, nil
		})
		if errors.Is(err, ErrSuperseded) {
			return e.discard("resolution")
		}
		errs = append(errs, err)
		push, perr := e.PushLocal(ctx)
		res.Push = push
		errs = append(errs, perr)
	default:
		return Result{}, fmt.Errorf("unknown resolution %d", int(r))
	}

	if !e.succeed(ctx, gen) {
		return e.discard("resolution")
	}
	e.log.Info("conflicts resolved",
		zap.Stringer("resolution", r),
		zap.Int("conflicts", len(conflicts)),
		zap.Int("added", res.Added))
	return res, errors.Join(errs...)
}

// succeed records a finished cycle unless Reset superseded it.
func (e *Engine) succeed(ctx context.Context, gen uint64) bool {
	if e.superseded(gen) {
		return false
	}
	now := e.now()
	if e.recorder != nil {
		if err := e.recorder.SetLastSync(ctx, now); err != nil {
			e.log.Warn("record last sync failed", zap.Error(err))
		}
	}
	return e.updateGen(gen, func(s *State) {
		e.pendingRemote = nil
		s.Phase = Idle
		s.Online = true
		s.LastSync = now
		s.PendingConflicts = nil
		s.LastError = ""
	})
}

func (e *Engine) discard(what string) (Result, error) {
	e.log.Info(what+" discarded after reset")
	return Result{Phase: Idle}, ErrSuperseded
}

func (e *Engine) fail(gen uint64, err error) {
	e.log.Warn("sync failed, remote unreachable", zap.Error(err))
	e.updateGen(gen, func(s *State) {
		s.Phase = Idle
		if len(s.PendingConflicts) > 0 {
			s.Phase = Conflict
		}
		s.Online = false
		s.LastError = err.Error()
	})
}
