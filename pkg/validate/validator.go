package validate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/asyncjob"
	"mercator-hq/callisto/pkg/keypath"
	"mercator-hq/callisto/pkg/watch"
)

// HandlerKind distinguishes the three ways errors enter a validator.
type HandlerKind string

const (
	// KindInstant marks results injected through UpdateErrors.
	KindInstant HandlerKind = "instant"
	// KindSync marks results produced by debounced synchronous handlers.
	KindSync HandlerKind = "sync"
	// KindAsync marks results produced by asynchronous handlers.
	KindAsync HandlerKind = "async"
)

// Result describes one completed handler run, emitted through the result
// hook for journaling and metrics. Fault runs carry Err and no errors.
type Result struct {
	Time     time.Time
	Subject  any
	Handler  HandlerKey
	Kind     HandlerKind
	Valid    bool
	Errors   []*Error
	Duration time.Duration
	Err      error
}

// SyncHandlerFunc is the body of a synchronous validation handler. It reads
// the tracked object and records failures on the builder.
type SyncHandlerFunc func(b *ErrorMapBuilder)

// AsyncHandlerFunc is the body of an asynchronous validation handler. It
// receives the latest dependency-expression value and a context cancelled
// when the run is aborted; results from an aborted run are discarded.
type AsyncHandlerFunc func(ctx context.Context, value any, b *ErrorMapBuilder) error

// Validator tracks the validation state of one object: it owns the error
// buckets written by its handlers and composes with the validators of
// nested child objects at query time. Instances are obtained through a
// Registry, never constructed directly.
//
// All methods are safe for concurrent use. Nesting must be acyclic.
type Validator struct {
	subject  any
	registry *Registry
	logger   *slog.Logger
	hook     func(Result)
	delay    time.Duration

	mu       sync.Mutex
	errors   map[HandlerKey]ErrorMap
	handlers map[HandlerKey]*handlerState
}

// handlerState is the per-handler bookkeeping: the trigger debouncer, the
// change-source subscription, and, for async handlers, the job.
type handlerState struct {
	kind        HandlerKind
	debounce    *watch.Debouncer
	unsubscribe func()
	job         jobControl
}

// jobControl is the slice of asyncjob.Job the validator needs, independent
// of the payload type.
type jobControl interface {
	Reset()
	Active() bool
}

// Option configures a Validator at creation time.
type Option func(*Validator)

// WithLogger sets the logger handler faults are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithResultHook installs an observer invoked after every handler run with
// that run's outcome. Used to feed journals and metrics; the hook must not
// call back into the validator.
func WithResultHook(hook func(Result)) Option {
	return func(v *Validator) {
		v.hook = hook
	}
}

// WithDefaultDelay sets the debounce delay applied to handlers that do not
// specify their own. The default is 100ms.
func WithDefaultDelay(delay time.Duration) Option {
	return func(v *Validator) {
		if delay > 0 {
			v.delay = delay
		}
	}
}

func newValidator(subject any, registry *Registry, opts ...Option) *Validator {
	v := &Validator{
		subject:  subject,
		registry: registry,
		logger:   slog.Default().With("component", "validate"),
		delay:    100 * time.Millisecond,
		errors:   make(map[HandlerKey]ErrorMap),
		handlers: make(map[HandlerKey]*handlerState),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Subject returns the tracked object.
func (v *Validator) Subject() any {
	return v.subject
}

// HandlerOption configures a handler registration.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	initialRun bool
	delay      time.Duration
	key        HandlerKey
}

// WithoutInitialRun suppresses the immediate run that normally happens when
// a handler is registered.
func WithoutInitialRun() HandlerOption {
	return func(o *handlerOptions) {
		o.initialRun = false
	}
}

// WithDelay sets this handler's debounce delay, overriding the validator's
// default.
func WithDelay(delay time.Duration) HandlerOption {
	return func(o *handlerOptions) {
		o.delay = delay
	}
}

// WithKey pins the handler's bucket key instead of generating one. Two
// handlers sharing a key overwrite each other's results; callers almost
// never want that outside of tests.
func WithKey(key HandlerKey) HandlerOption {
	return func(o *handlerOptions) {
		o.key = key
	}
}

func (v *Validator) handlerOptions(opts []HandlerOption) handlerOptions {
	o := handlerOptions{initialRun: true, delay: v.delay}
	for _, opt := range opts {
		opt(&o)
	}
	if o.key == "" {
		o.key = NewHandlerKey()
	}
	return o
}

// UpdateErrors synchronously invokes fn with a fresh builder and stores the
// result under key — the instant write path, with no debounce and no
// change source. An empty result clears the bucket. The returned disposer
// clears the bucket when called.
func (v *Validator) UpdateErrors(key HandlerKey, fn SyncHandlerFunc) func() {
	v.runHandler(key, KindInstant, fn)
	return func() {
		v.clearBucket(key)
	}
}

// AddSyncHandler registers fn to re-run, debounced, whenever source emits a
// change. Unless suppressed, the initial run happens synchronously before
// AddSyncHandler returns. The returned disposer stops future re-runs,
// cancels any pending one, and removes the handler's error bucket.
func (v *Validator) AddSyncHandler(source watch.Source, fn SyncHandlerFunc, opts ...HandlerOption) (func(), error) {
	if source == nil {
		return nil, &UsageError{Operation: "add_sync_handler", Message: "source cannot be nil"}
	}
	if fn == nil {
		return nil, &UsageError{Operation: "add_sync_handler", Message: "handler cannot be nil"}
	}

	o := v.handlerOptions(opts)
	state := &handlerState{
		kind:     KindSync,
		debounce: watch.NewDebouncer(o.delay),
	}
	key := o.key

	state.unsubscribe = source.Subscribe(func() {
		state.debounce.Trigger(func() {
			v.runHandler(key, KindSync, fn)
		})
	})

	v.mu.Lock()
	v.handlers[key] = state
	v.mu.Unlock()

	if o.initialRun {
		v.runHandler(key, KindSync, fn)
	}

	return func() {
		v.removeHandler(key)
	}, nil
}

// AddAsyncHandler registers an asynchronous handler. expr is the explicit
// dependency expression: it is evaluated at each trigger and its value is
// handed to fn as the job payload. Change notifications from source are
// debounced into requests on a per-handler job, so bursts coalesce and at
// most one body runs at a time. A job failure or abort never invalidates
// the validator; aborted runs commit nothing.
func (v *Validator) AddAsyncHandler(source watch.Source, expr func() any, fn AsyncHandlerFunc, opts ...HandlerOption) (func(), error) {
	if source == nil {
		return nil, &UsageError{Operation: "add_async_handler", Message: "source cannot be nil"}
	}
	if expr == nil {
		return nil, &UsageError{Operation: "add_async_handler", Message: "expression cannot be nil"}
	}
	if fn == nil {
		return nil, &UsageError{Operation: "add_async_handler", Message: "handler cannot be nil"}
	}

	o := v.handlerOptions(opts)
	key := o.key

	job := asyncjob.New(func(ctx context.Context, value any) error {
		return v.runAsync(ctx, key, value, fn)
	},
		asyncjob.WithDelay[any](o.delay),
		asyncjob.WithLogger[any](v.logger),
		asyncjob.WithErrorHandler[any](func(err error) {
			v.reportFault(key, KindAsync, err)
			v.emit(Result{
				Time: time.Now(), Subject: v.subject, Handler: key,
				Kind: KindAsync, Err: err,
			})
		}),
	)

	state := &handlerState{
		kind:     KindAsync,
		debounce: watch.NewDebouncer(o.delay),
		job:      job,
	}

	state.unsubscribe = source.Subscribe(func() {
		state.debounce.Trigger(func() {
			job.Request(expr())
		})
	})

	v.mu.Lock()
	v.handlers[key] = state
	v.mu.Unlock()

	if o.initialRun {
		job.Request(expr())
	}

	return func() {
		v.removeHandler(key)
	}, nil
}

// Reset clears all error buckets and cancels all pending reactions and
// in-flight or scheduled jobs. Handler registrations survive: handlers
// fire again on the next change from their sources.
func (v *Validator) Reset() {
	v.mu.Lock()
	v.errors = make(map[HandlerKey]ErrorMap)
	states := make([]*handlerState, 0, len(v.handlers))
	for _, s := range v.handlers {
		states = append(states, s)
	}
	v.mu.Unlock()

	for _, s := range states {
		s.debounce.Cancel()
		if s.job != nil {
			s.job.Reset()
		}
	}
}

// dispose tears the validator down on registry release: every handler is
// unsubscribed and all work cancelled.
func (v *Validator) dispose() {
	v.mu.Lock()
	states := make([]*handlerState, 0, len(v.handlers))
	for _, s := range v.handlers {
		states = append(states, s)
	}
	v.handlers = make(map[HandlerKey]*handlerState)
	v.errors = make(map[HandlerKey]ErrorMap)
	v.mu.Unlock()

	for _, s := range states {
		s.unsubscribe()
		s.debounce.Cancel()
		if s.job != nil {
			s.job.Reset()
		}
	}
}

// runHandler performs one synchronous handler run: fresh builder, guarded
// invocation, bucket store, result emission.
func (v *Validator) runHandler(key HandlerKey, kind HandlerKind, fn SyncHandlerFunc) {
	b := NewErrorMapBuilder()
	start := time.Now()

	if err := v.invoke(func() { fn(b) }); err != nil {
		v.reportFault(key, kind, err)
		v.emit(Result{
			Time: start, Subject: v.subject, Handler: key, Kind: kind,
			Duration: time.Since(start), Err: err,
		})
		return
	}

	v.commit(key, kind, b, start)
}

// runAsync is the body the per-handler job executes. The bucket write is
// gated on the execution still being current, so a stale run cannot
// clobber the result of a newer one.
func (v *Validator) runAsync(ctx context.Context, key HandlerKey, value any, fn AsyncHandlerFunc) error {
	b := NewErrorMapBuilder()
	start := time.Now()

	var runErr error
	if err := v.invoke(func() { runErr = fn(ctx, value, b) }); err != nil {
		runErr = err
	}

	if ctx.Err() != nil {
		// Aborted: the output is stale regardless of how the run ended.
		return ctx.Err()
	}
	if runErr != nil {
		return runErr
	}

	v.commit(key, KindAsync, b, start)
	return nil
}

// invoke runs fn, converting panics into errors so one broken handler
// cannot corrupt the validator or starve the others.
func (v *Validator) invoke(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	fn()
	return nil
}

// commit stores a successful run's result: empty results clear the bucket.
func (v *Validator) commit(key HandlerKey, kind HandlerKind, b *ErrorMapBuilder, start time.Time) {
	m := b.Build()

	v.mu.Lock()
	if m.Len() == 0 {
		delete(v.errors, key)
	} else {
		v.errors[key] = m
	}
	v.mu.Unlock()

	v.emit(Result{
		Time:     start,
		Subject:  v.subject,
		Handler:  key,
		Kind:     kind,
		Valid:    m.Len() == 0,
		Errors:   collectErrors(m),
		Duration: time.Since(start),
	})
}

func (v *Validator) clearBucket(key HandlerKey) {
	v.mu.Lock()
	delete(v.errors, key)
	v.mu.Unlock()
}

func (v *Validator) removeHandler(key HandlerKey) {
	v.mu.Lock()
	state, ok := v.handlers[key]
	delete(v.handlers, key)
	delete(v.errors, key)
	v.mu.Unlock()

	if !ok {
		return
	}
	state.unsubscribe()
	state.debounce.Cancel()
	if state.job != nil {
		state.job.Reset()
	}
}

// reportFault surfaces a handler execution failure to the error channel.
// Faults are swallowed here: the run simply produced no result.
func (v *Validator) reportFault(key HandlerKey, kind HandlerKind, err error) {
	v.logger.Error("validation handler failed",
		"handler", string(key),
		"kind", string(kind),
		"error", err,
	)
}

func (v *Validator) emit(r Result) {
	if v.hook != nil {
		v.hook(r)
	}
}

func collectErrors(m ErrorMap) []*Error {
	if m.Len() == 0 {
		return nil
	}
	out := make([]*Error, 0, m.Len())
	for e := range m.FindPrefix(keypath.Self) {
		out = append(out, e)
	}
	return out
}

// ReactionState returns the number of handler triggers currently waiting
// out their debounce delay.
func (v *Validator) ReactionState() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := 0
	for _, s := range v.handlers {
		if s.debounce.Pending() {
			n++
		}
	}
	return n
}

// AsyncState returns the number of async jobs currently running or
// scheduled.
func (v *Validator) AsyncState() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := 0
	for _, s := range v.handlers {
		if s.job != nil && s.job.Active() {
			n++
		}
	}
	return n
}

// IsValidating reports whether any handler run is pending or in flight.
func (v *Validator) IsValidating() bool {
	return v.ReactionState() > 0 || v.AsyncState() > 0
}

// child captures a nested validator and its attachment path for one query.
type child struct {
	entry     NestedEntry
	validator *Validator
}

// children resolves the current nested entries to validators. Called
// without holding v.mu; child validators are created lazily through the
// registry.
func (v *Validator) children() []child {
	nested, ok := v.subject.(Nested)
	if !ok {
		return nil
	}

	entries := nested.NestedEntries()
	out := make([]child, 0, len(entries))
	for _, entry := range entries {
		cv, err := v.registry.For(entry.Data)
		if err != nil {
			v.logger.Error("skipping nested entry",
				"key_path", entry.KeyPath.String(),
				"error", err,
			)
			continue
		}
		out = append(out, child{entry: entry, validator: cv})
	}
	return out
}

// ownErrors snapshots this validator's buckets' matches for path.
func (v *Validator) ownErrors(path keypath.KeyPath, prefixMatch bool) []*Error {
	v.mu.Lock()
	defer v.mu.Unlock()

	var out []*Error
	for _, m := range v.errors {
		seq := m.FindExact(path)
		if prefixMatch {
			seq = m.FindPrefix(path)
		}
		for e := range seq {
			out = append(out, e)
		}
	}
	return out
}

// covers reports whether a child attached at attachment owns path, and the
// path relative to the attachment if so. A hoisted child (attachment Self)
// owns every path; nothing but a hoisted child owns Self.
func covers(attachment, path keypath.KeyPath) (keypath.KeyPath, bool) {
	if attachment.IsSelf() {
		return path, true
	}
	if path.IsSelf() {
		return keypath.Self, false
	}
	return path.Relative(attachment)
}

// insideSubtree reports whether attachment lies at or under path, meaning
// the child's whole error set belongs to a prefix query at path.
func insideSubtree(attachment, path keypath.KeyPath) bool {
	if path.IsSelf() {
		return true
	}
	if attachment.IsSelf() {
		return false
	}
	_, ok := attachment.Relative(path)
	return ok
}

// FindErrors returns the errors at path, merged across this validator's
// buckets and its nested validators, addressed from this validator's root.
//
// With prefixMatch the result covers path's whole subtree. Without it the
// query is exact — but still reaches into the nearest nested validator
// owning path, so "X is wrong according to its parent" and "X's own
// Self-validation failed" surface together.
func (v *Validator) FindErrors(path keypath.KeyPath, prefixMatch bool) []*Error {
	out := v.ownErrors(path, prefixMatch)
	kids := v.children()

	handled := make(map[int]bool)
	if prefixMatch {
		for i, c := range kids {
			if insideSubtree(c.entry.KeyPath, path) {
				handled[i] = true
				for _, e := range c.validator.FindErrors(keypath.Self, true) {
					out = append(out, e.readdressed(c.entry.KeyPath))
				}
			}
		}
	}

	// Delegate to the nearest nested validator whose attachment is an
	// ancestor of path; at most one child is descended into.
	best := -1
	var bestRel keypath.KeyPath
	for i, c := range kids {
		if handled[i] {
			continue
		}
		rel, ok := covers(c.entry.KeyPath, path)
		if !ok {
			continue
		}
		if best < 0 || c.entry.KeyPath.Depth() > kids[best].entry.KeyPath.Depth() {
			best = i
			bestRel = rel
		}
	}
	if best >= 0 {
		c := kids[best]
		for _, e := range c.validator.FindErrors(bestRel, prefixMatch) {
			out = append(out, e.readdressed(c.entry.KeyPath))
		}
	}

	return out
}

// HasErrors reports whether any error exists anywhere in this validator's
// tree.
func (v *Validator) HasErrors() bool {
	return len(v.FindErrors(keypath.Self, true)) > 0
}

// IsValid is the negation of HasErrors.
func (v *Validator) IsValid() bool {
	return !v.HasErrors()
}

// ErrorMessages returns the distinct messages of every error in the tree,
// in unspecified order.
func (v *Validator) ErrorMessages() []string {
	errs := v.FindErrors(keypath.Self, true)
	seen := make(map[string]struct{}, len(errs))
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		if _, dup := seen[e.Message]; dup {
			continue
		}
		seen[e.Message] = struct{}{}
		out = append(out, e.Message)
	}
	return out
}

// FirstErrorMessage returns some error message from the tree, or "" when
// valid.
func (v *Validator) FirstErrorMessage() string {
	if msgs := v.ErrorMessages(); len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// InvalidKeys returns the sorted set of immediate field keys this
// validator's own buckets flag as invalid. Child validators do not
// contribute: this is the non-path-aware projection.
func (v *Validator) InvalidKeys() []keypath.KeyPath {
	v.mu.Lock()
	set := make(map[keypath.KeyPath]struct{})
	for _, m := range v.errors {
		for e := range m.FindPrefix(keypath.Self) {
			set[e.Key] = struct{}{}
		}
	}
	v.mu.Unlock()

	return sortedPaths(set)
}

// InvalidKeyPaths returns the sorted set of key paths, across the whole
// tree, at which at least one error is recorded.
func (v *Validator) InvalidKeyPaths() []keypath.KeyPath {
	set := make(map[keypath.KeyPath]struct{})
	for _, e := range v.FindErrors(keypath.Self, true) {
		set[e.KeyPath] = struct{}{}
	}
	return sortedPaths(set)
}

func sortedPaths(set map[keypath.KeyPath]struct{}) []keypath.KeyPath {
	out := make([]keypath.KeyPath, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
