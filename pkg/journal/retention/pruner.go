package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/callisto/pkg/journal"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain journal records.
	// 0 means keep records forever (no age-based pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
		MaxRecords:    0,
	}
}

// Pruner enforces retention policies on journal records.
type Pruner struct {
	storage   journal.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(storage journal.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "journal.retention"),
	}
	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune deletes journal records older than the retention period or
// exceeding the max record count.
//
// Pruning happens in two phases:
//  1. Age-based: delete records older than RetentionDays
//  2. Count-based: if total records > MaxRecords, delete oldest
//
// Both can run together. Returns the total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	return totalDeleted, nil
}

// Start begins scheduled pruning per the configured cron expression.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops scheduled pruning.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextRun returns the time of the next scheduled pruning run, or nil if
// the scheduler is not running.
func (p *Pruner) NextRun() *time.Time {
	return p.scheduler.NextRun()
}

// pruneByAge deletes records older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.storage.Delete(ctx, &journal.Query{
		EndTime: &cutoff,
	})
	if err != nil {
		return 0, journal.NewRetentionError(p.config.RetentionDays, err)
	}

	if deleted > 0 {
		p.logger.Info("pruned journal records by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
			"cutoff", cutoff,
		)
	}

	return deleted, nil
}

// pruneByCount deletes the oldest records when the total exceeds
// MaxRecords. The cutoff is the newest time among the excess oldest
// records, so records sharing that timestamp are pruned together.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	total, err := p.storage.Count(ctx, &journal.Query{})
	if err != nil {
		return 0, journal.NewRetentionError(p.config.RetentionDays, err)
	}

	excess := total - p.config.MaxRecords
	if excess <= 0 {
		return 0, nil
	}

	oldest, err := p.storage.Query(ctx, &journal.Query{
		SortBy:    "time",
		SortOrder: "asc",
		Limit:     int(excess),
	})
	if err != nil {
		return 0, journal.NewRetentionError(p.config.RetentionDays, err)
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	cutoff := oldest[len(oldest)-1].Time
	deleted, err := p.storage.Delete(ctx, &journal.Query{
		EndTime: &cutoff,
	})
	if err != nil {
		return 0, journal.NewRetentionError(p.config.RetentionDays, err)
	}

	if deleted > 0 {
		p.logger.Info("pruned journal records by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	return deleted, nil
}
