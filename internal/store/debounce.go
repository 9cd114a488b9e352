package store

import (
	"sync"
	"time"
)

// timer is the subset of *time.Timer the debouncer needs, kept as an
// interface so tests can drive firing with a fake clock.
type timer interface {
	Stop() bool
}

// timerFactory schedules fn to run once after d.
type timerFactory func(d time.Duration, fn func()) timer

func realTimerFactory(d time.Duration, fn func()) timer {
	return time.AfterFunc(d, fn)
}

// Debouncer coalesces bursts of triggers into one callback invocation.
// Each Trigger resets the window (last-write-wins); the callback runs
// once the window elapses with no further triggers. The pending payload
// is whatever state the callback reads when it finally runs, so five
// triggers inside one window produce one callback observing the fifth
// trigger's state.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	fn       func()
	newTimer timerFactory
	pending  timer
}

// NewDebouncer creates a debouncer around fn with the given quiet
// window.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return newDebouncer(delay, fn, realTimerFactory)
}

func newDebouncer(delay time.Duration, fn func(), factory timerFactory) *Debouncer {
	return &Debouncer{
		delay:    delay,
		fn:       fn,
		newTimer: factory,
	}
}

// Trigger starts or resets the quiet window.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
	}
	d.pending = d.newTimer(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()

	d.fn()
}

// Cancel drops any pending invocation without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}

// Pending reports whether an invocation is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
