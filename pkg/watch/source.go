package watch

import (
	"sync"

	"mercator-hq/callisto/pkg/keypath"
)

// Source is a stream of "something relevant changed" notifications.
// Validation handlers subscribe to a Source to know when to re-run.
type Source interface {
	// Subscribe registers fn to be invoked on every change notification
	// and returns a cancel function that stops future invocations.
	// Callbacks may be invoked from arbitrary goroutines and should be
	// quick; heavy work belongs behind a Debouncer or an async job.
	Subscribe(fn func()) (cancel func())
}

// Signal is an in-process change source driven by explicit Notify calls.
// It carries a monotonically increasing change counter and the set of key
// paths reported changed since the last Changed() drain, fulfilling the
// watcher contract consumers of the validation engine rely on.
//
// All methods are safe for concurrent use.
type Signal struct {
	mu          sync.Mutex
	count       uint64
	changed     map[keypath.KeyPath]struct{}
	subscribers map[uint64]func()
	nextID      uint64
}

// NewSignal creates an idle Signal with no subscribers.
func NewSignal() *Signal {
	return &Signal{
		changed:     make(map[keypath.KeyPath]struct{}),
		subscribers: make(map[uint64]func()),
	}
}

// Notify records the given key paths as changed, increments the change
// counter, and invokes every subscriber once. Calling Notify with no paths
// still counts as a change ("the object changed somewhere").
func (s *Signal) Notify(paths ...keypath.KeyPath) {
	s.mu.Lock()
	s.count++
	for _, p := range paths {
		s.changed[p] = struct{}{}
	}
	subs := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Count returns the monotonically increasing change counter.
func (s *Signal) Count() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Changed returns the key paths reported changed since the previous call
// and clears the set.
func (s *Signal) Changed() []keypath.KeyPath {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.changed) == 0 {
		return nil
	}
	out := make([]keypath.KeyPath, 0, len(s.changed))
	for p := range s.changed {
		out = append(out, p)
	}
	s.changed = make(map[keypath.KeyPath]struct{})
	return out
}

// Subscribe implements Source.
func (s *Signal) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}
