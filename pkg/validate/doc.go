// Package validate is the reactive validation engine: it tracks which
// parts of a nested object graph are invalid, runs synchronous and
// asynchronous validation handlers against them, and exposes aggregated,
// path-addressable error information.
//
// # Model
//
// Each tracked object gets exactly one Validator, obtained through a
// Registry (or the package-level For). Handlers attach to the validator
// and each owns an independent error bucket keyed by an opaque HandlerKey,
// so handlers never overwrite each other's results. Queries merge across
// buckets and recursively across the validators of nested child objects —
// discovered through the Nested interface — at read time; there is no
// eager global recomputation.
//
// # Handlers
//
// Three write paths exist:
//
//   - UpdateErrors: instant, externally-driven result injection.
//   - AddSyncHandler: a synchronous body re-run, debounced, whenever its
//     change source emits.
//   - AddAsyncHandler: an asynchronous body fed through a per-handler
//     asyncjob.Job, with an explicit dependency expression and
//     context-based cancellation.
//
// Handler failures are reported to the validator's logger and treated as
// "this run produced no result"; they never corrupt state or block other
// handlers. Validation errors themselves are data, collected through the
// ErrorMapBuilder, never thrown.
//
// # Basic Usage
//
//	account := &Account{}
//	v, err := validate.For(account)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	changes := watch.NewSignal()
//	dispose, err := v.AddSyncHandler(changes, func(b *validate.ErrorMapBuilder) {
//	    if account.Name == "" {
//	        b.Invalidate("name", "name is required")
//	    }
//	})
//
//	account.Name = "ada"
//	changes.Notify("name")
//
//	v.IsValid()      // eventually true
//	dispose()        // unregister and drop the handler's errors
//	validate.Release(account)
package validate
