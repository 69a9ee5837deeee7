package validate

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// HandlerKey identifies one handler's error bucket. Each updateErrors call
// site and each registered handler owns a distinct key, so handlers never
// overwrite each other's results.
type HandlerKey string

// NewHandlerKey returns a fresh opaque handler key.
func NewHandlerKey() HandlerKey {
	return HandlerKey(uuid.New().String())
}

// Registry maps tracked objects to their validators, one per object.
// Lookups are lazy: the first For call for a subject creates its validator
// and later calls return the same instance. Go has no GC-observable weak
// maps, so lifetime is an explicit contract: whoever owns the tracked
// object calls Release when it goes away.
//
// All methods are safe for concurrent use.
type Registry struct {
	mu         sync.Mutex
	validators map[any]*Validator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[any]*Validator)}
}

// defaultRegistry backs the package-level For/Release.
var defaultRegistry = NewRegistry()

// For returns the validator for subject from the default registry.
func For(subject any, opts ...Option) (*Validator, error) {
	return defaultRegistry.For(subject, opts...)
}

// Release removes subject's validator from the default registry.
func Release(subject any) {
	defaultRegistry.Release(subject)
}

// For returns the validator tracking subject, creating it on first lookup.
// The subject must be a non-nil pointer so that it has a stable, hashable
// identity to key the registry by; anything else is a usage error.
//
// Options are applied only when the validator is created; they are ignored
// on cache hits.
func (r *Registry) For(subject any, opts ...Option) (*Validator, error) {
	if err := checkSubject(subject); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.validators[subject]; ok {
		return v, nil
	}

	v := newValidator(subject, r, opts...)
	r.validators[subject] = v
	return v, nil
}

// Peek returns the validator for subject if one exists, without creating it.
func (r *Registry) Peek(subject any) *Validator {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.validators[subject]
}

// Release drops subject's validator, cancelling all of its pending work and
// removing its handler registrations. Safe to call for unknown subjects.
func (r *Registry) Release(subject any) {
	r.mu.Lock()
	v, ok := r.validators[subject]
	delete(r.validators, subject)
	r.mu.Unlock()

	if ok {
		v.dispose()
	}
}

// Len returns the number of tracked subjects.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.validators)
}

func checkSubject(subject any) error {
	if subject == nil {
		return &UsageError{Operation: "for", Message: "subject cannot be nil"}
	}
	rv := reflect.ValueOf(subject)
	if rv.Kind() != reflect.Pointer {
		return &UsageError{
			Operation: "for",
			Message:   "subject must be a pointer, got " + rv.Kind().String(),
		}
	}
	if rv.IsNil() {
		return &UsageError{Operation: "for", Message: "subject cannot be a nil pointer"}
	}
	return nil
}
