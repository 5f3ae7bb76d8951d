package schedule

import (
	"sync"
	"time"
)

// Scheduler runs onTick every interval until stopped.
type Scheduler interface {
	Start(every time.Duration, onTick func())
	Stop()
}

// Ticker is a Scheduler backed by time.Ticker.
type Ticker struct {
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewTicker returns a stopped Ticker.
func NewTicker() *Ticker {
	return &Ticker{}
}

// Start begins ticking, replacing any loop already running. Ticks that
// arrive while onTick is still running are dropped.
func (t *Ticker) Start(every time.Duration, onTick func()) {
	if every <= 0 || onTick == nil {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})

	// The swap and the close of the old loop happen under one lock so
	// concurrent Starts cannot both install a loop.
	t.mu.Lock()
	oldStop, oldDone := t.stop, t.done
	t.stop, t.done = stop, done
	if oldStop != nil {
		close(oldStop)
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				onTick()
			}
		}
	}()
	t.mu.Unlock()

	if oldDone != nil {
		<-oldDone
	}
}

// Stop halts the loop and waits for it to exit. Stopping a stopped Ticker is
// a no-op. Stop must not be called from inside onTick.
func (t *Ticker) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether a loop is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// Manual is a Scheduler that only ticks when told to.
type Manual struct {
	mu      sync.Mutex
	every   time.Duration
	onTick  func()
	started int
}

// Start records onTick.
func (m *Manual) Start(every time.Duration, onTick func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.every = every
	m.onTick = onTick
	m.started++
}

// Stop forgets the callback.
func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTick = nil
}

// Tick runs the callback once and reports whether one was registered.
func (m *Manual) Tick() bool {
	m.mu.Lock()
	fn := m.onTick
	m.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Running reports whether a callback is registered.
func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onTick != nil
}

// Interval returns the interval passed to the last Start.
func (m *Manual) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.every
}

// Starts counts Start calls.
func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}
