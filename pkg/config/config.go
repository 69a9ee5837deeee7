package config

import "time"

// Config is the root configuration structure for Callisto. It contains all
// configuration sections for the validation engine, the audit journal,
// logging, and metrics.
type Config struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Validation contains configuration for the validation engine.
	Validation ValidationConfig `yaml:"validation"`

	// Journal contains configuration for the validation audit journal
	// including storage backend, recorder, and retention settings.
	Journal JournalConfig `yaml:"journal"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// ValidationConfig contains configuration for the validation engine.
type ValidationConfig struct {
	// DefaultDelay is the default debounce interval for sync handlers and
	// the default scheduling delay for async handler jobs.
	// Default: 100ms
	DefaultDelay time.Duration `yaml:"default_delay"`

	// WatchDebounce is the debounce interval for file-backed change
	// sources.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// JournalConfig contains configuration for the validation audit journal.
type JournalConfig struct {
	// Enabled controls whether validation results are journaled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite backend configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains async recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite storage configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/journal.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains async recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// RecordValid enables journaling runs that produced no errors.
	// Default: true
	RecordValid bool `yaml:"record_valid"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// RetentionDays is the number of days to retain journal records.
	// 0 means keep records forever.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "mercator"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "callisto"
	Subsystem string `yaml:"subsystem"`

	// HandlerDurationBuckets defines histogram buckets for handler run
	// durations in seconds.
	// Default: [0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0]
	HandlerDurationBuckets []float64 `yaml:"handler_duration_buckets"`
}
