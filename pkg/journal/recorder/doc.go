// Package recorder turns validation results into journal records and
// writes them to storage asynchronously. The result hook enqueues and
// returns immediately; when the queue is full, records are dropped and
// counted rather than blocking a handler run.
package recorder
