package validate

import (
	"mercator-hq/callisto/pkg/keypath"
)

// Nested is implemented by tracked types that contain other tracked objects.
// The validator consults it on every query to discover which child
// validators to merge with; the structure is never cached, so entries may
// reflect live, time-varying collections.
type Nested interface {
	// NestedEntries returns the child objects and the key paths at which
	// each is attached.
	NestedEntries() []NestedEntry
}

// NestedEntry identifies one nested child object.
type NestedEntry struct {
	// Key is the immediate field of the parent the child's errors bubble
	// up to; Self for hoisted children.
	Key keypath.KeyPath

	// KeyPath is the path at which the child is attached under the
	// parent's root. Self means the child is hoisted: its own root is
	// treated as identical to the parent's root rather than nested under
	// a new segment.
	KeyPath keypath.KeyPath

	// Data is the child object.
	Data any
}

// NestedAt declares a child attached at the given field key.
func NestedAt(key string, data any) NestedEntry {
	p := keypath.Join(key)
	return NestedEntry{Key: p.FirstSegment(), KeyPath: p, Data: data}
}

// NestedAtIndex declares a child attached at a collection index under the
// given field key, e.g. "items.0".
func NestedAtIndex(key string, index int, data any) NestedEntry {
	p := keypath.JoinIndex(keypath.Join(key), index)
	return NestedEntry{Key: p.FirstSegment(), KeyPath: p, Data: data}
}

// Hoisted declares a child whose root coincides with the parent's root.
// The child's errors surface on the parent unprefixed.
func Hoisted(data any) NestedEntry {
	return NestedEntry{Key: keypath.Self, KeyPath: keypath.Self, Data: data}
}
