package schedule

import (
	"context"
	"sync"
	"time"
)

// NetworkObserver reports connectivity transitions.
type NetworkObserver interface {
	Subscribe(fn func(online bool)) (cancel func())
}

const maxBackoff = 30 * time.Second

// calculateBackoff doubles base per consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

type listeners struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(bool)
}

func (l *listeners) add(fn func(bool)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(bool))
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners) notify(online bool) {
	l.mu.Lock()
	fns := make([]func(bool), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(online)
	}
}

// Pinger polls a ping function and reports online/offline transitions.
// It starts out assuming the network is up.
type Pinger struct {
	ping  func(ctx context.Context) error
	every time.Duration

	mu       sync.Mutex
	online   bool
	failures int

	subs listeners
}

// NewPinger builds a Pinger calling ping every interval.
func NewPinger(ping func(ctx context.Context) error, every time.Duration) *Pinger {
	if every <= 0 {
		every = 10 * time.Second
	}
	return &Pinger{ping: ping, every: every, online: true}
}

// Subscribe registers fn for transitions.
func (p *Pinger) Subscribe(fn func(online bool)) func() {
	return p.subs.add(fn)
}

// Online returns the last observed state.
func (p *Pinger) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

// Check pings once and notifies subscribers if the state changed.
func (p *Pinger) Check(ctx context.Context) bool {
	err := p.ping(ctx)
	online := err == nil

	p.mu.Lock()
	changed := online != p.online
	p.online = online
	if online {
		p.failures = 0
	} else {
		p.failures++
	}
	p.mu.Unlock()

	if changed {
		p.subs.notify(online)
	}
	return online
}

// Run pings until ctx is cancelled. While offline the wait between pings
// backs off up to 30 seconds.
func (p *Pinger) Run(ctx context.Context) {
	for {
		p.Check(ctx)

		p.mu.Lock()
		wait := calculateBackoff(p.failures, p.every)
		p.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// ManualNetwork is a NetworkObserver driven by Set.
type ManualNetwork struct {
	mu     sync.Mutex
	online bool
	subs   listeners
}

// NewManualNetwork returns a ManualNetwork in the given state.
func NewManualNetwork(online bool) *ManualNetwork {
	return &ManualNetwork{online: online}
}

// Subscribe registers fn for transitions.
func (m *ManualNetwork) Subscribe(fn func(online bool)) func() {
	return m.subs.add(fn)
}

// Set changes the state, notifying subscribers on a transition.
func (m *ManualNetwork) Set(online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	m.mu.Unlock()
	if changed {
		m.subs.notify(online)
	}
}

// Online returns the current state.
func (m *ManualNetwork) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}
