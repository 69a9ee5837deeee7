package retention

import (
	"context"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/journal"
	"mercator-hq/callisto/pkg/journal/storage"
)

// TestPruner_PruneOldRecords tests pruning records older than the
// retention period.
func TestPruner_PruneOldRecords(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.RetentionDays = 7
	config.MaxRecords = 0

	pruner := NewPruner(store, config)

	ctx := context.Background()
	now := time.Now()

	records := []*journal.Record{
		{ID: "old-1", Time: now.AddDate(0, 0, -10)},
		{ID: "old-2", Time: now.AddDate(0, 0, -8)},
		{ID: "recent-1", Time: now.AddDate(0, 0, -5)},
		{ID: "recent-2", Time: now.AddDate(0, 0, -3)},
	}
	for _, record := range records {
		if err := store.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() deleted %d records, want 2", deleted)
	}

	remaining, err := store.Count(ctx, &journal.Query{})
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if remaining != 2 {
		t.Errorf("remaining = %d, want 2", remaining)
	}
}

// TestPruner_PruneByCount tests count-based pruning keeps the newest.
func TestPruner_PruneByCount(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.RetentionDays = 0
	config.MaxRecords = 2

	pruner := NewPruner(store, config)

	ctx := context.Background()
	now := time.Now()

	for i := range 5 {
		record := &journal.Record{
			ID:   string(rune('a' + i)),
			Time: now.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Prune() deleted %d records, want 3", deleted)
	}

	remaining, err := store.Query(ctx, &journal.Query{SortOrder: "asc"})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(remaining) != 2 || remaining[0].ID != "d" || remaining[1].ID != "e" {
		t.Errorf("remaining records = %v, want the two newest", idsOf(remaining))
	}
}

// TestPruner_NoRetentionConfigured tests that zero limits prune nothing.
func TestPruner_NoRetentionConfigured(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := &Config{RetentionDays: 0, MaxRecords: 0}

	pruner := NewPruner(store, config)

	ctx := context.Background()
	record := &journal.Record{ID: "ancient", Time: time.Now().AddDate(-10, 0, 0)}
	if err := store.Store(ctx, record); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() deleted %d records, want 0", deleted)
	}
}

func idsOf(records []*journal.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
