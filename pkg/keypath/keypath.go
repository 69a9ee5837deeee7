package keypath

import (
	"iter"
	"strconv"
	"strings"
)

// KeyPath is a dot-delimited address identifying a node in a nested object
// graph. The zero value is Self, the distinguished sentinel meaning "the root
// of the current object". Paths are immutable values; segments never contain
// the delimiter.
type KeyPath string

// Self addresses the root of the current object. It is semantically
// equivalent to an empty path.
const Self KeyPath = ""

// Delimiter separates path segments.
const Delimiter = "."

// Join builds a KeyPath from the given parts, joined with the delimiter.
// Empty parts are skipped, which supports conditionally included segments.
// Joining zero usable parts yields Self.
func Join(parts ...string) KeyPath {
	var sb strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(Delimiter)
		}
		sb.WriteString(part)
	}
	return KeyPath(sb.String())
}

// JoinIndex appends a collection index to p, rendered as a decimal segment.
func JoinIndex(p KeyPath, index int) KeyPath {
	return Join(string(p), strconv.Itoa(index))
}

// IsSelf reports whether p is the Self sentinel (or, equivalently, empty).
func (p KeyPath) IsSelf() bool {
	return p == Self
}

// FirstSegment returns the first segment of p, or Self if p is Self.
// The first segment is the immediate field of the root object that the
// path descends into; errors raised at p bubble up to this key.
func (p KeyPath) FirstSegment() KeyPath {
	if p.IsSelf() {
		return Self
	}
	if i := strings.Index(string(p), Delimiter); i >= 0 {
		return p[:i]
	}
	return p
}

// Segments splits p into its individual segments. Self has no segments.
func (p KeyPath) Segments() []string {
	if p.IsSelf() {
		return nil
	}
	return strings.Split(string(p), Delimiter)
}

// Depth returns the number of segments in p. Self has depth zero.
func (p KeyPath) Depth() int {
	if p.IsSelf() {
		return 0
	}
	return strings.Count(string(p), Delimiter) + 1
}

// Ancestors returns a lazy sequence of p and each successively shorter
// prefix, longest first, down to (and including) the first single segment.
// When includeSelf is false, p itself is omitted and only strict ancestors
// are yielded. For Self the sequence contains only Self (or nothing when
// includeSelf is false).
//
// Each call returns a fresh sequence; iteration may be abandoned early.
func (p KeyPath) Ancestors(includeSelf bool) iter.Seq[KeyPath] {
	return func(yield func(KeyPath) bool) {
		if p.IsSelf() {
			if includeSelf {
				yield(Self)
			}
			return
		}
		current := p
		if includeSelf {
			if !yield(current) {
				return
			}
		}
		for {
			i := strings.LastIndex(string(current), Delimiter)
			if i < 0 {
				return
			}
			current = current[:i]
			if !yield(current) {
				return
			}
		}
	}
}

// Relative computes the path of p relative to prefix.
//
// It returns (suffix, true) when p is a strict descendant of prefix,
// (Self, true) when p equals prefix or p is Self, and (p, true) when prefix
// is Self. Otherwise p is not addressed under prefix and ok is false.
//
// Matching respects the delimiter boundary: "a.bb" is not a descendant
// of "a.b".
func (p KeyPath) Relative(prefix KeyPath) (rel KeyPath, ok bool) {
	if prefix.IsSelf() {
		return p, true
	}
	if p.IsSelf() || p == prefix {
		return Self, true
	}
	if strings.HasPrefix(string(p), string(prefix)+Delimiter) {
		return p[len(prefix)+1:], true
	}
	return Self, false
}

// IsAncestorOf reports whether p is Self or a proper prefix of other at a
// delimiter boundary, i.e. whether paths under other are addressed under p.
func (p KeyPath) IsAncestorOf(other KeyPath) bool {
	_, ok := other.Relative(p)
	return ok
}

// Child appends a single segment to p.
func (p KeyPath) Child(segment string) KeyPath {
	return Join(string(p), segment)
}

// Resolve re-addresses rel under p: it prepends p to rel. Resolving against
// Self returns rel unchanged; resolving Self under p returns p.
func (p KeyPath) Resolve(rel KeyPath) KeyPath {
	return Join(string(p), string(rel))
}

func (p KeyPath) String() string {
	if p.IsSelf() {
		return "<self>"
	}
	return string(p)
}
