package asyncjob

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// State describes where a Job is in its lifecycle.
type State int

const (
	// StateIdle means no execution is running or scheduled.
	StateIdle State = iota
	// StateRunning means an execution is currently in flight.
	StateRunning
	// StateScheduled means a follow-up execution is waiting for the
	// scheduling delay to elapse.
	StateScheduled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateScheduled:
		return "scheduled"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Handler is the unit of work a Job executes. The context is cancelled when
// the execution is aborted (forced re-request or Reset); handlers should
// stop as soon as convenient once cancelled, since an aborted execution's
// output is discarded.
type Handler[P any] func(ctx context.Context, payload P) error

// Job is a single-slot debounced/throttled asynchronous task runner.
//
// A request while idle executes immediately. A request while running is
// buffered as the single pending payload (last write wins) and runs after
// the current execution completes plus the scheduling delay. Requests while
// scheduled replace the buffered payload and push the deadline out. A forced
// request aborts whatever is in flight or scheduled and runs right away.
//
// Executions are strictly serialized from the Job's point of view: stale
// completions are detected with a generation counter and can neither
// transition the state machine nor have their results committed (see Live).
//
// Handler errors and panics are reported to the error callback (or logged)
// and never leave the Job stuck in a non-idle state.
//
// All methods are safe for concurrent use.
type Job[P any] struct {
	mu      sync.Mutex
	state   State
	delay   time.Duration
	handler Handler[P]
	logger  *slog.Logger
	onError func(error)

	timer      *time.Timer
	pending    *P
	cancel     context.CancelFunc
	generation uint64
}

// Option configures a Job.
type Option[P any] func(*Job[P])

// WithDelay sets the scheduling delay applied between an execution and its
// buffered follow-up. The default is 100ms.
func WithDelay[P any](delay time.Duration) Option[P] {
	return func(j *Job[P]) {
		j.delay = delay
	}
}

// WithLogger sets the logger used to report handler failures.
func WithLogger[P any](logger *slog.Logger) Option[P] {
	return func(j *Job[P]) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// WithErrorHandler installs a callback invoked with every handler failure.
// Failures are reported, never rethrown; they do not prevent later requests.
func WithErrorHandler[P any](fn func(error)) Option[P] {
	return func(j *Job[P]) {
		j.onError = fn
	}
}

// New creates a Job that runs handler for each accepted request.
func New[P any](handler Handler[P], opts ...Option[P]) *Job[P] {
	j := &Job[P]{
		state:   StateIdle,
		delay:   100 * time.Millisecond,
		handler: handler,
		logger:  slog.Default().With("component", "asyncjob"),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	force bool
}

// Force makes the request abort any in-flight or scheduled execution and
// run immediately.
func Force() RequestOption {
	return func(o *requestOptions) {
		o.force = true
	}
}

// Request submits new work with the given payload.
func (j *Job[P]) Request(payload P, opts ...RequestOption) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	switch j.state {
	case StateIdle:
		j.startLocked(payload)

	case StateRunning:
		if ro.force {
			j.abortLocked()
			j.startLocked(payload)
			return
		}
		// Buffer as the single pending payload; last write wins.
		p := payload
		j.pending = &p

	case StateScheduled:
		if ro.force {
			j.stopTimerLocked()
			j.pending = nil
			j.startLocked(payload)
			return
		}
		// Coalesce: replace the payload and push the deadline out.
		p := payload
		j.pending = &p
		j.stopTimerLocked()
		j.scheduleLocked()
	}
}

// Reset cancels any scheduled timer, aborts any in-flight execution,
// discards the buffered payload, and returns the Job to idle.
func (j *Job[P]) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.stopTimerLocked()
	j.abortLocked()
	j.pending = nil
	j.state = StateIdle
}

// State returns the current state.
func (j *Job[P]) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Active reports whether the Job is running or scheduled.
func (j *Job[P]) Active() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state != StateIdle
}

// Live reports whether the execution owning ctx is still the Job's current
// one. Handlers writing results somewhere should gate the write on Live so
// a stale execution cannot clobber the output of a newer one.
func (j *Job[P]) Live(ctx context.Context) bool {
	return ctx.Err() == nil
}

// startLocked begins a new execution with payload. Caller holds j.mu.
func (j *Job[P]) startLocked(payload P) {
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	j.state = StateRunning
	j.generation++
	gen := j.generation

	go j.run(ctx, gen, payload)
}

// run executes the handler and drives the completion transition.
func (j *Job[P]) run(ctx context.Context, gen uint64, payload P) {
	err := j.invoke(ctx, payload)
	if err != nil && ctx.Err() == nil {
		j.report(err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	// A forced restart or Reset superseded this execution; the newer one
	// owns the state machine now.
	if gen != j.generation {
		return
	}

	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}

	if j.pending != nil {
		j.state = StateScheduled
		j.scheduleLocked()
	} else {
		j.state = StateIdle
	}
}

// invoke calls the handler, converting panics into reported errors so a
// buggy handler cannot wedge the state machine.
func (j *Job[P]) invoke(ctx context.Context, payload P) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return j.handler(ctx, payload)
}

// scheduleLocked arms the delay timer for the buffered payload.
// Caller holds j.mu.
func (j *Job[P]) scheduleLocked() {
	gen := j.generation
	j.timer = time.AfterFunc(j.delay, func() {
		j.mu.Lock()
		defer j.mu.Unlock()

		// The timer lost a race against a coalescing request, a forced
		// run, or Reset.
		if j.state != StateScheduled || gen != j.generation || j.pending == nil {
			return
		}

		payload := *j.pending
		j.pending = nil
		j.timer = nil
		j.startLocked(payload)
	})
}

func (j *Job[P]) stopTimerLocked() {
	if j.timer != nil {
		j.timer.Stop()
		j.timer = nil
	}
}

// abortLocked signals cancellation to the in-flight execution, if any, and
// bumps the generation so its completion is ignored. Caller holds j.mu.
func (j *Job[P]) abortLocked() {
	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
	j.generation++
}

func (j *Job[P]) report(err error) {
	if j.onError != nil {
		j.onError(err)
		return
	}
	j.logger.Error("job handler failed", "error", err)
}
