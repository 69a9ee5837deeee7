// Package journal provides a persistent audit trail of validation activity.
// Every committed handler run becomes an immutable Record capturing the
// subject, the handler, the outcome, and the errors reported.
//
// The journal consists of three layers:
//
//  1. Recorder - turns validator results into records, asynchronously
//  2. Storage backend - persists records (SQLite, memory)
//  3. Retention - prunes old records on a cron schedule
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path: "data/journal.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	rec := recorder.NewRecorder(store, nil)
//	defer rec.Close()
//
//	v, err := validate.For(form, validate.WithResultHook(rec.Hook()))
//
// Recording is asynchronous: the hook enqueues and returns immediately, a
// background worker drains the queue into storage. When the queue is full
// records are dropped and counted rather than blocking validation.
//
// # Querying
//
//	records, err := store.Query(ctx, &journal.Query{
//	    Subject: "*main.signupForm",
//	    Valid:   &invalid,
//	    Limit:   100,
//	})
//
// # Retention
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *",
//	})
//	pruner.Start(ctx)
//	defer pruner.Stop()
package journal
