// Package watch provides change-notification sources and debouncing for
// the validation engine.
//
// A Source emits "something relevant changed" events; validation handlers
// subscribe to one to know when to re-run. Three implementations are
// provided:
//
//   - Signal: an in-process source driven by explicit Notify calls, with a
//     monotonically increasing change counter and a changed key-path set.
//     This is what object-graph trackers feed.
//   - FileSource: an fsnotify-backed source for file-backed data models,
//     with extension filtering and debouncing.
//   - CronSource: a periodic tick source for rules whose truth decays over
//     time (e.g. async checks against external systems).
//
// Debouncer is the shared quiet-period primitive: bursts of events collapse
// into a single callback after the burst settles.
package watch
