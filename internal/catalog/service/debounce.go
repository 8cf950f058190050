package service

import (
	"sync"
	"time"

	"refurb/pkg/platform/clock"
)

// Debouncer runs only the last of a burst of triggers, once the burst has
// been quiet for window.
type Debouncer struct {
	mu     sync.Mutex
	clock  clock.Clock
	window time.Duration
	timer  clock.Timer
}

func NewDebouncer(c clock.Clock, window time.Duration) *Debouncer {
	return &Debouncer{clock: c, window: window}
}

// Trigger cancels any pending call and schedules fn. A non-positive window
// runs fn immediately on the caller's goroutine.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.window <= 0 {
		d.mu.Unlock()
		fn()
		return
	}
	d.timer = d.clock.AfterFunc(d.window, fn)
	d.mu.Unlock()
}

// Stop cancels the pending call, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
