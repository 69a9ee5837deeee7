// Package asyncjob provides a single-slot debounced/throttled runner for
// asynchronous work, used to rate-limit expensive operations such as
// validation against external systems.
//
// Each Job owns at most one in-flight execution and at most one buffered
// follow-up payload. Rapid requests coalesce to the latest payload
// ("throttle with coalesce-to-last"), forced requests abort the current
// execution and run immediately, and Reset returns the Job to idle.
//
// # Basic Usage
//
//	job := asyncjob.New(func(ctx context.Context, query string) error {
//	    return lookup(ctx, query)
//	}, asyncjob.WithDelay[string](200*time.Millisecond))
//
//	job.Request("first")               // runs immediately
//	job.Request("second")              // buffered, runs after the first
//	job.Request("now", asyncjob.Force()) // aborts and runs right away
//
// Cancellation is delivered through the handler's context; handlers should
// treat it as "stop as soon as convenient" and must not commit results once
// the context is cancelled.
package asyncjob
