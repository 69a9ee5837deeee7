package watch

import (
	"testing"
)

func TestNewCronSourceValidatesSchedule(t *testing.T) {
	if _, err := NewCronSource("not a schedule"); err == nil {
		t.Error("NewCronSource() with invalid schedule error = nil, want error")
	}

	cs, err := NewCronSource("@every 1h")
	if err != nil {
		t.Fatalf("NewCronSource() error = %v", err)
	}
	if cs.Count() != 0 {
		t.Errorf("Count() = %d before start, want 0", cs.Count())
	}
}

func TestCronSourceStartStop(t *testing.T) {
	cs, err := NewCronSource("@every 1h")
	if err != nil {
		t.Fatal(err)
	}

	if err := cs.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	// Starting again is a no-op.
	if err := cs.Start(); err != nil {
		t.Errorf("second Start() error = %v, want nil", err)
	}

	cs.Stop()
	// Stopping again is a no-op.
	cs.Stop()
}
