package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the journal database schema.
const Schema = `
-- Journal records table
CREATE TABLE IF NOT EXISTS journal (
    id TEXT PRIMARY KEY,
    time TIMESTAMP NOT NULL,

    -- Run identity
    subject TEXT NOT NULL,
    handler_key TEXT NOT NULL,
    kind TEXT NOT NULL,

    -- Outcome
    valid BOOLEAN NOT NULL,
    errors TEXT,
    duration INTEGER,
    err TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_journal_time ON journal(time);
CREATE INDEX IF NOT EXISTS idx_journal_subject ON journal(subject);
CREATE INDEX IF NOT EXISTS idx_journal_handler_key ON journal(handler_key);
CREATE INDEX IF NOT EXISTS idx_journal_kind ON journal(kind);
CREATE INDEX IF NOT EXISTS idx_journal_valid ON journal(valid);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
