// Package retention enforces journal retention policies. The Pruner
// deletes records past the configured age or count limits, either on
// demand or on a cron schedule via the Scheduler.
package retention
