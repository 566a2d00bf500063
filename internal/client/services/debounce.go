package services

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single deferred call.
// Schedule arms the timer or pushes it out if already armed, so N writes
// within the delay window cause one callback, not N.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer returns a debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// SetDelay changes the delay used by subsequent Schedule calls. A call
// already armed keeps its original deadline.
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.mu.Lock()
	d.delay = delay
	d.mu.Unlock()
}

// Schedule arms the timer to run fn after the delay. If a call is already
// pending, the timer is reset and the previous fn is dropped.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a call is currently armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
