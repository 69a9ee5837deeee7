package storage

import (
	"context"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/journal"
)

// TestMemoryStorage_StoreAndQuery tests storing and querying records.
func TestMemoryStorage_StoreAndQuery(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	record := &journal.Record{
		ID:         "test-id-1",
		Time:       time.Now(),
		Subject:    "*main.signupForm",
		HandlerKey: "handler-1",
		Kind:       "sync",
		Valid:      false,
		Errors: []journal.ErrorEntry{
			{KeyPath: "name", Key: "name", Message: "name is required"},
		},
		Duration: 3 * time.Millisecond,
	}

	if err := storage.Store(ctx, record); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	results, err := storage.Query(ctx, &journal.Query{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(results))
	}
	if results[0].ID != "test-id-1" {
		t.Errorf("Expected ID 'test-id-1', got '%s'", results[0].ID)
	}
	if len(results[0].Errors) != 1 || results[0].Errors[0].Message != "name is required" {
		t.Errorf("Errors = %v", results[0].Errors)
	}
}

// TestMemoryStorage_QueryFilters tests field filtering.
func TestMemoryStorage_QueryFilters(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	now := time.Now()

	records := []*journal.Record{
		{ID: "r1", Time: now.Add(-2 * time.Hour), Subject: "*main.a", HandlerKey: "h1", Kind: "sync", Valid: true},
		{ID: "r2", Time: now.Add(-30 * time.Minute), Subject: "*main.a", HandlerKey: "h2", Kind: "async", Valid: false},
		{ID: "r3", Time: now, Subject: "*main.b", HandlerKey: "h1", Kind: "sync", Valid: false},
	}
	for _, record := range records {
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	tests := []struct {
		name  string
		query *journal.Query
		want  int
	}{
		{"all", &journal.Query{}, 3},
		{"by subject", &journal.Query{Subject: "*main.a"}, 2},
		{"by handler", &journal.Query{HandlerKey: "h1"}, 2},
		{"by kind", &journal.Query{Kind: "async"}, 1},
		{"invalid only", &journal.Query{Valid: boolPtr(false)}, 2},
		{"time range", &journal.Query{StartTime: timePtr(now.Add(-time.Hour))}, 2},
		{"combined", &journal.Query{Subject: "*main.a", Valid: boolPtr(false)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := storage.Query(ctx, tt.query)
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}
			if len(results) != tt.want {
				t.Errorf("got %d records, want %d", len(results), tt.want)
			}
		})
	}
}

// TestMemoryStorage_SortAndPaginate tests sorting and limit/offset.
func TestMemoryStorage_SortAndPaginate(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	now := time.Now()

	for i, id := range []string{"a", "b", "c", "d"} {
		record := &journal.Record{
			ID:   id,
			Time: now.Add(time.Duration(i) * time.Minute),
		}
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	// Default order is newest first.
	results, err := storage.Query(ctx, &journal.Query{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if results[0].ID != "d" {
		t.Errorf("first record = %s, want d", results[0].ID)
	}

	// Ascending with pagination.
	results, err = storage.Query(ctx, &journal.Query{
		SortOrder: "asc",
		Limit:     2,
		Offset:    1,
	})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(results) != 2 || results[0].ID != "b" || results[1].ID != "c" {
		t.Errorf("page = %v", ids(results))
	}
}

// TestMemoryStorage_CountAndDelete tests counting and filtered deletion.
func TestMemoryStorage_CountAndDelete(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	now := time.Now()

	for i := range 5 {
		record := &journal.Record{
			ID:    string(rune('a' + i)),
			Time:  now.Add(time.Duration(-i) * time.Hour),
			Valid: i%2 == 0,
		}
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	count, err := storage.Count(ctx, &journal.Query{})
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Count() = %d, want 5", count)
	}

	deleted, err := storage.Delete(ctx, &journal.Query{Valid: boolPtr(false)})
	if err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Delete() = %d, want 2", deleted)
	}

	count, err = storage.Count(ctx, &journal.Query{})
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Count() after delete = %d, want 3", count)
	}
}

// TestMemoryStorage_StoreCopies tests that stored records are isolated from
// caller mutation.
func TestMemoryStorage_StoreCopies(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	record := &journal.Record{ID: "r1", Subject: "*main.a"}
	if err := storage.Store(ctx, record); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	record.Subject = "mutated"

	results, err := storage.Query(ctx, &journal.Query{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if results[0].Subject != "*main.a" {
		t.Errorf("stored record was mutated: %s", results[0].Subject)
	}
}

func boolPtr(b bool) *bool { return &b }

func timePtr(t time.Time) *time.Time { return &t }

func ids(records []*journal.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
