package watch

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// CronSource is a change Source that ticks on a cron schedule. It exists
// for validation rules whose truth decays over time — typically async
// handlers checking external systems — so they can be re-run periodically
// even when the tracked object itself has not changed.
type CronSource struct {
	schedule string
	cron     *cron.Cron
	signal   *Signal
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewCronSource creates a source ticking on the given cron expression.
//
// Common expressions:
//   - "@every 5m"  - every five minutes
//   - "0 * * * *"  - on the hour
//   - "0 3 * * *"  - daily at 3 AM
func NewCronSource(schedule string) (*CronSource, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("watch: invalid cron schedule %q: %w", schedule, err)
	}

	return &CronSource{
		schedule: schedule,
		cron:     cron.New(),
		signal:   NewSignal(),
		logger:   slog.Default().With("component", "watch.cron"),
	}, nil
}

// Subscribe implements Source.
func (cs *CronSource) Subscribe(fn func()) (cancel func()) {
	return cs.signal.Subscribe(fn)
}

// Count returns the number of ticks delivered so far.
func (cs *CronSource) Count() uint64 {
	return cs.signal.Count()
}

// Start begins ticking. It is a no-op if the source is already running.
func (cs *CronSource) Start() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.running {
		return nil
	}

	if _, err := cs.cron.AddFunc(cs.schedule, func() {
		cs.signal.Notify()
	}); err != nil {
		return fmt.Errorf("watch: failed to schedule ticks: %w", err)
	}

	cs.cron.Start()
	cs.running = true
	cs.logger.Info("cron source started", "schedule", cs.schedule)
	return nil
}

// Stop stops ticking and waits for an in-flight tick callback to finish.
func (cs *CronSource) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.running {
		return
	}
	ctx := cs.cron.Stop()
	<-ctx.Done()
	cs.running = false
	cs.logger.Info("cron source stopped")
}
