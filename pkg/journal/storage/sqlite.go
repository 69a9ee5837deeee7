package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/callisto/pkg/journal"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/journal.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "journal.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, journal.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		_, err := s.db.Exec("PRAGMA journal_mode=WAL;")
		if err != nil {
			return journal.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs))
	if err != nil {
		return journal.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	_, err = s.db.Exec(Schema)
	if err != nil {
		return journal.NewStorageError("sqlite", "create_schema", err)
	}

	_, err = s.db.Exec(InsertSchemaVersion, SchemaVersion)
	if err != nil {
		return journal.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err = s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return journal.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return journal.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// Store persists a journal record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *journal.Record) error {
	errorsJSON, err := json.Marshal(record.Errors)
	if err != nil {
		return journal.NewStorageError("sqlite", "marshal_errors", err)
	}

	query := `
		INSERT INTO journal (
			id, time, subject, handler_key, kind, valid, errors, duration, err
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// Convert empty strings to NULL for optional fields
	var errVal interface{}
	if record.Err != "" {
		errVal = record.Err
	}

	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.Time,
		record.Subject, record.HandlerKey, record.Kind,
		record.Valid, string(errorsJSON), record.Duration.Microseconds(),
		errVal,
	)
	if err != nil {
		return journal.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves journal records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *journal.Query) ([]*journal.Record, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT id, time, subject, handler_key, kind, valid, errors, duration, err FROM journal"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += orderClause(query)
	sqlQuery += pageClause(query)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, journal.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*journal.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, journal.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, journal.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of journal records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *journal.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM journal"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count)
	if err != nil {
		return 0, journal.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes journal records matching the query filters.
// Returns the number of records deleted.
func (s *SQLiteStorage) Delete(ctx context.Context, query *journal.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM journal"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, journal.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, journal.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return journal.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite storage closed")
	return nil
}

// buildWhereClause builds a WHERE clause and argument list from the query
// filters. Returns an empty clause when no filters are set.
func buildWhereClause(query *journal.Query) (string, []interface{}) {
	clause := ""
	args := []interface{}{}

	add := func(cond string, condArgs ...interface{}) {
		if clause != "" {
			clause += " AND "
		}
		clause += cond
		args = append(args, condArgs...)
	}

	if query.StartTime != nil {
		add("time >= ?", *query.StartTime)
	}
	if query.EndTime != nil {
		add("time <= ?", *query.EndTime)
	}
	if query.Subject != "" {
		add("subject = ?", query.Subject)
	}
	if query.HandlerKey != "" {
		add("handler_key = ?", query.HandlerKey)
	}
	if query.Kind != "" {
		add("kind = ?", query.Kind)
	}
	if query.Valid != nil {
		add("valid = ?", *query.Valid)
	}

	return clause, args
}

// orderClause builds the ORDER BY clause from the query's sorting fields.
// Sort fields are mapped to a column allowlist, never interpolated raw.
func orderClause(query *journal.Query) string {
	column := "time"
	switch query.SortBy {
	case "", "time":
	case "duration":
		column = "duration"
	}

	order := "DESC"
	if query.SortOrder == "asc" {
		order = "ASC"
	}

	return fmt.Sprintf(" ORDER BY %s %s", column, order)
}

// pageClause builds the LIMIT/OFFSET clause from the query's pagination
// fields.
func pageClause(query *journal.Query) string {
	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	clause := fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		clause += fmt.Sprintf(" OFFSET %d", query.Offset)
	}
	return clause
}

// scanRow scans a single journal row into a Record.
func scanRow(rows *sql.Rows) (*journal.Record, error) {
	var (
		record     journal.Record
		errorsJSON string
		durationUs int64
		errVal     sql.NullString
	)

	err := rows.Scan(
		&record.ID, &record.Time,
		&record.Subject, &record.HandlerKey, &record.Kind,
		&record.Valid, &errorsJSON, &durationUs,
		&errVal,
	)
	if err != nil {
		return nil, err
	}

	if errorsJSON != "" {
		if err := json.Unmarshal([]byte(errorsJSON), &record.Errors); err != nil {
			return nil, err
		}
	}
	record.Duration = time.Duration(durationUs) * time.Microsecond
	if errVal.Valid {
		record.Err = errVal.String
	}

	return &record, nil
}
