package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mercator-hq/callisto/pkg/journal"
	"mercator-hq/callisto/pkg/validate"
)

// Config contains configuration for the journal recorder.
type Config struct {
	// Enabled enables journal recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// RecordValid enables recording runs that produced no errors.
	// When false only invalid runs and faults are journaled.
	// Default: true
	RecordValid bool
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
		RecordValid:  true,
	}
}

// Recorder journals validation results. Records are written asynchronously
// so a slow storage backend never blocks a handler run: the result hook
// enqueues and returns, a background worker drains the queue into storage.
// When the queue is full the record is dropped and counted.
type Recorder struct {
	storage    journal.Storage
	config     *Config
	recordChan chan *journal.Record
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
	dropped    atomic.Int64
}

// NewRecorder creates a new journal recorder backed by the provided storage.
func NewRecorder(storage journal.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *journal.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "journal.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("journal recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
		"record_valid", config.RecordValid,
	)

	return r
}

// Hook returns a result hook suitable for validate.WithResultHook. The hook
// never blocks: it enqueues the record and returns.
func (r *Recorder) Hook() func(validate.Result) {
	return func(res validate.Result) {
		r.Record(res)
	}
}

// Record enqueues a validation result for async journaling.
func (r *Recorder) Record(res validate.Result) {
	if !r.config.Enabled {
		return
	}
	if res.Valid && res.Err == nil && !r.config.RecordValid {
		return
	}
	// Aborted runs are control flow, not outcomes.
	if errors.Is(res.Err, context.Canceled) {
		return
	}

	record := buildRecord(res)

	select {
	case r.recordChan <- record:
	default:
		// Queue full: validation must not block on the journal.
		r.dropped.Add(1)
		r.logger.Warn("journal queue full, dropping record",
			"record_id", record.ID,
			"handler_key", record.HandlerKey,
			"channel_capacity", r.config.AsyncBuffer,
		)
	}
}

// Dropped returns the number of records dropped because the queue was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close gracefully shuts down the recorder by draining the queue and
// waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down journal recorder")

	close(r.done)
	r.wg.Wait()

	r.logger.Info("journal recorder shut down complete")
	return nil
}

// worker is the background goroutine that drains the record channel and
// writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records before exit
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single record to storage.
func (r *Recorder) writeRecord(record *journal.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store journal record",
			"record_id", record.ID,
			"handler_key", record.HandlerKey,
			"error", err,
		)
		return
	}

	r.logger.Debug("journal record stored",
		"record_id", record.ID,
		"handler_key", record.HandlerKey,
		"valid", record.Valid,
	)
}

// buildRecord converts a validation result into a journal record.
func buildRecord(res validate.Result) *journal.Record {
	record := &journal.Record{
		ID:         uuid.New().String(),
		Time:       res.Time,
		Subject:    describeSubject(res.Subject),
		HandlerKey: string(res.Handler),
		Kind:       string(res.Kind),
		Valid:      res.Valid,
		Duration:   res.Duration,
	}

	if len(res.Errors) > 0 {
		record.Errors = make([]journal.ErrorEntry, 0, len(res.Errors))
		for _, e := range res.Errors {
			record.Errors = append(record.Errors, journal.ErrorEntry{
				KeyPath: string(e.KeyPath),
				Key:     string(e.Key),
				Message: e.Message,
			})
		}
	}

	if res.Err != nil {
		record.Err = res.Err.Error()
	}

	return record
}

// describeSubject renders a subject as its Go type, e.g. "*main.signupForm".
func describeSubject(subject any) string {
	if subject == nil {
		return ""
	}
	return fmt.Sprintf("%T", subject)
}
