package watch

import (
	"sync"
	"time"
)

// Debouncer collects rapid events and runs the callback only after a quiet
// period of the configured interval with no further events. A burst of
// triggers produces exactly one callback invocation after the burst settles.
//
// Thread-safety: all methods are safe for concurrent use. The callback is
// never invoked concurrently with itself from the debouncer.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	callback func()
	pending  bool
	seq      uint64 // detects stale timer callbacks
}

// NewDebouncer creates a new debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback to run after the quiet period. Each call
// replaces the stored callback and restarts the timer, so only the last
// callback of a burst runs.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback
	d.pending = true
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		if !d.pending || d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.timer = nil
		cb := d.callback
		d.callback = nil
		d.mu.Unlock()

		cb()
	})
}

// Flush runs a pending callback immediately, cancelling its timer.
// It does nothing when no callback is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	cb := d.callback
	d.callback = nil
	d.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Cancel drops any pending callback without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
	d.callback = nil
}

// Pending reports whether a callback is waiting for the quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels any pending callback. The debouncer may be reused afterwards.
func (d *Debouncer) Stop() {
	d.Cancel()
}
