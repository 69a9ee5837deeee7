package keypath

import (
	"fmt"
	"iter"
)

// InvalidStateError is returned when a MultiMap is used in a way its current
// state forbids, such as mutating a frozen instance.
type InvalidStateError struct {
	Operation string
	Message   string
}

// Error implements the error interface.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("keypath: %s: %s", e.Operation, e.Message)
}

func errFrozen(op string) error {
	return &InvalidStateError{Operation: op, Message: "multimap is frozen"}
}

// MultiMap maps a KeyPath to a set of values. Duplicate values at the same
// path are collapsed by equality. Besides exact lookups it supports prefix
// queries ("everything at or under this path") in O(fan-out) rather than a
// full scan, backed by a secondary index from every strict ancestor path to
// the set of descendant paths that have entries.
//
// A MultiMap can be frozen into an immutable view with ToImmutable; mutation
// after freezing fails with *InvalidStateError.
//
// MultiMap is not safe for concurrent use; callers own synchronization.
type MultiMap[T comparable] struct {
	entries  map[KeyPath]map[T]struct{}
	children map[KeyPath]map[KeyPath]struct{}
	size     int
	frozen   bool
}

// NewMultiMap creates an empty MultiMap.
func NewMultiMap[T comparable]() *MultiMap[T] {
	return &MultiMap[T]{
		entries:  make(map[KeyPath]map[T]struct{}),
		children: make(map[KeyPath]map[KeyPath]struct{}),
	}
}

// ImmutableMultiMap is the read-only view of a frozen MultiMap.
type ImmutableMultiMap[T comparable] interface {
	Has(path KeyPath) bool
	Len() int
	FindExact(path KeyPath) iter.Seq[T]
	FindPrefix(path KeyPath) iter.Seq[T]
	Paths() iter.Seq[KeyPath]
}

// Set adds value to the set stored at path. Setting an already present
// (path, value) pair is a no-op. Returns *InvalidStateError if the map
// is frozen.
func (m *MultiMap[T]) Set(path KeyPath, value T) error {
	if m.frozen {
		return errFrozen("set")
	}

	bucket, ok := m.entries[path]
	if !ok {
		bucket = make(map[T]struct{})
		m.entries[path] = bucket

		// Index this path under every strict ancestor.
		for ancestor := range path.Ancestors(false) {
			descendants, ok := m.children[ancestor]
			if !ok {
				descendants = make(map[KeyPath]struct{})
				m.children[ancestor] = descendants
			}
			descendants[path] = struct{}{}
		}
	}

	if _, exists := bucket[value]; !exists {
		bucket[value] = struct{}{}
		m.size++
	}
	return nil
}

// Delete removes value from the set stored at path, pruning the bucket and
// any now-empty ancestor index entries. Deleting an absent pair is a no-op.
// Returns *InvalidStateError if the map is frozen.
func (m *MultiMap[T]) Delete(path KeyPath, value T) error {
	if m.frozen {
		return errFrozen("delete")
	}

	bucket, ok := m.entries[path]
	if !ok {
		return nil
	}
	if _, exists := bucket[value]; !exists {
		return nil
	}

	delete(bucket, value)
	m.size--

	if len(bucket) == 0 {
		delete(m.entries, path)

		for ancestor := range path.Ancestors(false) {
			descendants, ok := m.children[ancestor]
			if !ok {
				continue
			}
			delete(descendants, path)
			if len(descendants) == 0 {
				delete(m.children, ancestor)
			}
		}
	}
	return nil
}

// Has reports whether any value is stored exactly at path.
func (m *MultiMap[T]) Has(path KeyPath) bool {
	_, ok := m.entries[path]
	return ok
}

// Len returns the total number of stored values across all paths.
func (m *MultiMap[T]) Len() int {
	return m.size
}

// FindExact yields the values stored exactly at path.
func (m *MultiMap[T]) FindExact(path KeyPath) iter.Seq[T] {
	return func(yield func(T) bool) {
		for value := range m.entries[path] {
			if !yield(value) {
				return
			}
		}
	}
}

// FindPrefix yields the values stored at path plus the values at every
// descendant path. For Self it yields every value in the map.
func (m *MultiMap[T]) FindPrefix(path KeyPath) iter.Seq[T] {
	return func(yield func(T) bool) {
		if path.IsSelf() {
			for _, bucket := range m.entries {
				for value := range bucket {
					if !yield(value) {
						return
					}
				}
			}
			return
		}

		for value := range m.entries[path] {
			if !yield(value) {
				return
			}
		}
		for descendant := range m.children[path] {
			for value := range m.entries[descendant] {
				if !yield(value) {
					return
				}
			}
		}
	}
}

// Paths yields every path that has at least one value.
func (m *MultiMap[T]) Paths() iter.Seq[KeyPath] {
	return func(yield func(KeyPath) bool) {
		for path := range m.entries {
			if !yield(path) {
				return
			}
		}
	}
}

// ToImmutable freezes the map in place and returns it as a read-only view.
// All subsequent Set/Delete calls fail with *InvalidStateError.
func (m *MultiMap[T]) ToImmutable() ImmutableMultiMap[T] {
	m.frozen = true
	return m
}

// Frozen reports whether the map has been frozen.
func (m *MultiMap[T]) Frozen() bool {
	return m.frozen
}
