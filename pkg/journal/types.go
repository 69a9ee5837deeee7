package journal

import (
	"context"
	"time"
)

// Record is the audit trail for a single handler run: which handler ran
// against which subject, whether it passed, and the errors it reported.
type Record struct {
	// Identity
	ID string `json:"id"` // UUID v4

	// Time is when the handler run completed.
	Time time.Time `json:"time"`

	// Subject is a textual description of the validated subject,
	// typically its Go type.
	Subject string `json:"subject"`

	// HandlerKey identifies the handler's error bucket.
	HandlerKey string `json:"handler_key"`

	// Kind is the handler kind ("instant", "sync", "async").
	Kind string `json:"kind"`

	// Valid reports whether the run produced no errors.
	Valid bool `json:"valid"`

	// Errors holds the validation errors the run reported, if any.
	Errors []ErrorEntry `json:"errors,omitempty"`

	// Duration is how long the handler body took.
	Duration time.Duration `json:"duration"`

	// Err carries the handler's own failure (fault, not invalidity),
	// if the run itself errored.
	Err string `json:"err,omitempty"`
}

// ErrorEntry is one validation error inside a Record.
type ErrorEntry struct {
	KeyPath string `json:"key_path"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Query defines filter parameters for querying journal records.
type Query struct {
	// Time range (inclusive)
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Filters
	Subject    string `json:"subject,omitempty"`     // Filter by subject description
	HandlerKey string `json:"handler_key,omitempty"` // Filter by handler key
	Kind       string `json:"kind,omitempty"`        // "instant", "sync", "async"
	Valid      *bool  `json:"valid,omitempty"`       // Filter by outcome

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Sorting
	SortBy    string `json:"sort_by,omitempty"`    // "time", "duration"
	SortOrder string `json:"sort_order,omitempty"` // "asc", "desc"
}

// Storage defines the interface for journal storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a journal record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves journal records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of journal records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes journal records matching the query filters and
	// returns the number of records deleted. Used for retention
	// enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}
