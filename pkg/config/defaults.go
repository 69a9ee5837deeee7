package config

import "time"

// Default values for configuration fields.
const (
	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// Validation defaults
	DefaultValidationDelay = 100 * time.Millisecond
	DefaultWatchDebounce   = 100 * time.Millisecond

	// Journal defaults
	DefaultJournalEnabled       = true
	DefaultJournalBackend       = "sqlite"
	DefaultSQLitePath           = "data/journal.db"
	DefaultSQLiteMaxOpenConns   = 10
	DefaultSQLiteMaxIdleConns   = 5
	DefaultSQLiteWALMode        = true
	DefaultSQLiteBusyTimeout    = 5 * time.Second
	DefaultRecorderAsyncBuffer  = 1000
	DefaultRecorderWriteTimeout = 5 * time.Second
	DefaultRecorderRecordValid  = true
	DefaultRetentionDays        = 90
	DefaultRetentionSchedule    = "0 3 * * *"

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "mercator"
	DefaultMetricsSubsystem = "callisto"
)

// DefaultHandlerDurationBuckets are histogram buckets tuned for handler run
// durations, from sub-millisecond sync rules to multi-second remote checks.
var DefaultHandlerDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0}

// DefaultConfig returns a configuration populated with all default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	// Boolean defaults cannot be zero-checked; set them up front. Loading
	// unmarshals on top of this struct so explicit false values survive.
	cfg.Journal.Enabled = DefaultJournalEnabled
	cfg.Journal.SQLite.WALMode = DefaultSQLiteWALMode
	cfg.Journal.Recorder.RecordValid = DefaultRecorderRecordValid
	cfg.Journal.Retention.RetentionDays = DefaultRetentionDays
	cfg.Metrics.Enabled = DefaultMetricsEnabled

	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values for any unset configuration fields.
// Explicitly configured values are preserved.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Validation.DefaultDelay == 0 {
		cfg.Validation.DefaultDelay = DefaultValidationDelay
	}
	if cfg.Validation.WatchDebounce == 0 {
		cfg.Validation.WatchDebounce = DefaultWatchDebounce
	}

	if cfg.Journal.Backend == "" {
		cfg.Journal.Backend = DefaultJournalBackend
	}
	if cfg.Journal.SQLite.Path == "" {
		cfg.Journal.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Journal.SQLite.MaxOpenConns == 0 {
		cfg.Journal.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Journal.SQLite.MaxIdleConns == 0 {
		cfg.Journal.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if cfg.Journal.SQLite.BusyTimeout == 0 {
		cfg.Journal.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Journal.Recorder.AsyncBuffer == 0 {
		cfg.Journal.Recorder.AsyncBuffer = DefaultRecorderAsyncBuffer
	}
	if cfg.Journal.Recorder.WriteTimeout == 0 {
		cfg.Journal.Recorder.WriteTimeout = DefaultRecorderWriteTimeout
	}
	if cfg.Journal.Retention.PruneSchedule == "" {
		cfg.Journal.Retention.PruneSchedule = DefaultRetentionSchedule
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Metrics.HandlerDurationBuckets) == 0 {
		cfg.Metrics.HandlerDurationBuckets = DefaultHandlerDurationBuckets
	}
}
