package watch

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var calls atomic.Int32

	// Ten rapid triggers within the quiet period produce one call.
	for range 10 {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	// Allow a moment for any (incorrect) extra callbacks to land.
	time.Sleep(100 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want exactly 1", got)
	}
}

func TestDebouncerPending(t *testing.T) {
	d := NewDebouncer(time.Hour)

	if d.Pending() {
		t.Error("Pending() = true before any trigger")
	}

	d.Trigger(func() {})
	if !d.Pending() {
		t.Error("Pending() = false after trigger")
	}

	d.Cancel()
	if d.Pending() {
		t.Error("Pending() = true after cancel")
	}
}

func TestDebouncerCancelDropsCallback(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32

	d.Trigger(func() { calls.Add(1) })
	d.Cancel()

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("calls = %d after cancel, want 0", got)
	}
}

func TestDebouncerFlush(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var calls atomic.Int32

	d.Trigger(func() { calls.Add(1) })
	d.Flush()

	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d after flush, want 1", got)
	}
	if d.Pending() {
		t.Error("Pending() = true after flush")
	}

	// Flushing with nothing pending is a no-op.
	d.Flush()
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d after second flush, want 1", got)
	}
}

func TestDebouncerLastCallbackWins(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var got atomic.Int32

	d.Trigger(func() { got.Store(1) })
	d.Trigger(func() { got.Store(2) })

	deadline := time.Now().Add(2 * time.Second)
	for got.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if v := got.Load(); v != 2 {
		t.Errorf("executed callback = %d, want 2 (last trigger wins)", v)
	}
}
