package validate

import (
	"mercator-hq/callisto/pkg/keypath"
)

// ErrorMap is the immutable result of one handler run: a frozen multimap
// from key path to the errors raised there.
type ErrorMap = keypath.ImmutableMultiMap[*Error]

// ErrorMapBuilder is a write-only accumulator scoped to a single handler
// run. Handlers receive a fresh builder, call Invalidate/InvalidateSelf for
// each failure they detect, and the engine finalizes the builder into an
// immutable ErrorMap. A builder with zero invalidations yields an empty
// "no error" result, which is distinct from a handler that has not run.
//
// A builder must not be retained or used after the handler returns.
type ErrorMapBuilder struct {
	m *keypath.MultiMap[*Error]
}

// NewErrorMapBuilder creates an empty builder. The engine constructs
// builders for handler runs; this is exported so handler bodies can be
// unit-tested in isolation.
func NewErrorMapBuilder() *ErrorMapBuilder {
	return &ErrorMapBuilder{m: keypath.NewMultiMap[*Error]()}
}

// Invalidate attaches an error to the named field of the tracked object.
func (b *ErrorMapBuilder) Invalidate(fieldKey string, reason string) {
	b.add(keypath.Join(fieldKey), reason, nil)
}

// InvalidateCause attaches an error with an underlying cause to the named
// field of the tracked object.
func (b *ErrorMapBuilder) InvalidateCause(fieldKey string, reason string, cause error) {
	b.add(keypath.Join(fieldKey), reason, cause)
}

// InvalidateSelf attaches an error to the object as a whole, addressed via
// Self. Parents use this to flag a hoisted child as invalid.
func (b *ErrorMapBuilder) InvalidateSelf(reason string) {
	b.add(keypath.Self, reason, nil)
}

// InvalidateSelfCause is InvalidateSelf with an underlying cause.
func (b *ErrorMapBuilder) InvalidateSelfCause(reason string, cause error) {
	b.add(keypath.Self, reason, cause)
}

func (b *ErrorMapBuilder) add(path keypath.KeyPath, reason string, cause error) {
	// Set on an unfrozen map cannot fail.
	_ = b.m.Set(path, newError(path, reason, cause))
}

// HasError reports whether any invalidation has been recorded.
func (b *ErrorMapBuilder) HasError() bool {
	return b.m.Len() > 0
}

// Build freezes the accumulated errors into an immutable ErrorMap.
func (b *ErrorMapBuilder) Build() ErrorMap {
	return b.m.ToImmutable()
}
