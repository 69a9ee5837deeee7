package retention

import (
	"context"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/journal/storage"
)

// TestScheduler_StartStop tests the scheduler lifecycle.
func TestScheduler_StartStop(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.PruneSchedule = "0 3 * * *"

	pruner := NewPruner(store, config)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !pruner.scheduler.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	next := pruner.scheduler.NextRun()
	if next == nil {
		t.Fatal("NextRun() = nil while running")
	}
	if !next.After(time.Now()) {
		t.Errorf("NextRun() = %v, want a future time", next)
	}

	pruner.Stop()
	if pruner.scheduler.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	if pruner.scheduler.NextRun() != nil {
		t.Error("NextRun() != nil after Stop")
	}
}

// TestScheduler_EmptyScheduleIsNoop tests an unset schedule does nothing.
func TestScheduler_EmptyScheduleIsNoop(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.PruneSchedule = ""

	pruner := NewPruner(store, config)

	if err := pruner.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if pruner.scheduler.IsRunning() {
		t.Error("IsRunning() = true with empty schedule")
	}
}

// TestScheduler_InvalidSchedule tests cron validation.
func TestScheduler_InvalidSchedule(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.PruneSchedule = "not a cron expression"

	pruner := NewPruner(store, config)

	if err := pruner.Start(context.Background()); err == nil {
		t.Error("Start() with invalid schedule succeeded, want error")
	}
}

// TestScheduler_StopsOnContextCancel tests the scheduler follows its
// context.
func TestScheduler_StopsOnContextCancel(t *testing.T) {
	store := storage.NewMemoryStorage()
	pruner := NewPruner(store, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	cancel()

	deadline := time.Now().Add(3 * time.Second)
	for pruner.scheduler.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if pruner.scheduler.IsRunning() {
		t.Error("scheduler still running after context cancel")
	}
}
