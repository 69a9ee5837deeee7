// Package storage provides storage backends for journal records.
//
// Two implementations satisfy the journal.Storage interface:
//
//   - SQLite: durable embedded storage with WAL mode, indexed queries,
//     and a versioned schema
//   - Memory: in-memory storage for testing
//
// All backends are safe for concurrent use; Store and Query can be called
// from multiple goroutines at once.
package storage
