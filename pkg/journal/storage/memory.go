package storage

import (
	"context"
	"sort"
	"sync"

	"mercator-hq/callisto/pkg/journal"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// This implementation is intended for testing only.
type MemoryStorage struct {
	records map[string]*journal.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*journal.Record),
	}
}

// Store persists a journal record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *journal.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to avoid mutation through the caller's pointer
	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves journal records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *journal.Query) ([]*journal.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*journal.Record{}
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sortRecords(results, query)

	// Pagination
	start := query.Offset
	if start > len(results) {
		return []*journal.Record{}, nil
	}
	results = results[start:]

	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}

	return results, nil
}

// Count returns the number of journal records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *journal.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}
	return count, nil
}

// Delete removes journal records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *journal.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if matchesQuery(record, query) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*journal.Record)
	return nil
}

// matchesQuery reports whether a record passes all the query filters.
func matchesQuery(record *journal.Record, query *journal.Query) bool {
	if query.StartTime != nil && record.Time.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.Time.After(*query.EndTime) {
		return false
	}
	if query.Subject != "" && record.Subject != query.Subject {
		return false
	}
	if query.HandlerKey != "" && record.HandlerKey != query.HandlerKey {
		return false
	}
	if query.Kind != "" && record.Kind != query.Kind {
		return false
	}
	if query.Valid != nil && record.Valid != *query.Valid {
		return false
	}
	return true
}

// sortRecords sorts results per the query's sorting fields. Defaults to
// newest first, matching the SQLite backend.
func sortRecords(records []*journal.Record, query *journal.Query) {
	asc := query.SortOrder == "asc"

	sort.Slice(records, func(i, j int) bool {
		var less bool
		switch query.SortBy {
		case "duration":
			less = records[i].Duration < records[j].Duration
		default:
			less = records[i].Time.Before(records[j].Time)
		}
		if asc {
			return less
		}
		return !less
	})
}
