package keypath

import (
	"errors"
	"slices"
	"testing"
)

func collectSeq[T comparable](seq func(func(T) bool)) []T {
	var out []T
	seq(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

func sortedValues[T ~string](seq func(func(T) bool)) []T {
	out := collectSeq(seq)
	slices.Sort(out)
	return out
}

func TestMultiMapSetAndFindExact(t *testing.T) {
	m := NewMultiMap[string]()

	if err := m.Set("a.b", "first"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := m.Set("a.b.c", "second"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got := sortedValues(m.FindExact("a.b")); !slices.Equal(got, []string{"first"}) {
		t.Errorf("FindExact(a.b) = %v, want [first]", got)
	}
	if got := collectSeq(m.FindExact("a")); got != nil {
		t.Errorf("FindExact(a) = %v, want empty", got)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestMultiMapDuplicatesCollapse(t *testing.T) {
	m := NewMultiMap[string]()

	_ = m.Set("a", "v")
	_ = m.Set("a", "v")

	if m.Len() != 1 {
		t.Errorf("Len() = %d after duplicate Set, want 1", m.Len())
	}
	if got := collectSeq(m.FindExact("a")); len(got) != 1 {
		t.Errorf("FindExact(a) = %v, want one value", got)
	}
}

func TestMultiMapFindPrefix(t *testing.T) {
	m := NewMultiMap[string]()
	_ = m.Set("a.b", "at-b")
	_ = m.Set("a.b.c", "at-c")
	_ = m.Set("x", "at-x")

	if got := sortedValues(m.FindPrefix("a.b")); !slices.Equal(got, []string{"at-b", "at-c"}) {
		t.Errorf("FindPrefix(a.b) = %v, want [at-b at-c]", got)
	}
	if got := sortedValues(m.FindPrefix("a")); !slices.Equal(got, []string{"at-b", "at-c"}) {
		t.Errorf("FindPrefix(a) = %v, want [at-b at-c]", got)
	}
	if got := sortedValues(m.FindPrefix(Self)); !slices.Equal(got, []string{"at-b", "at-c", "at-x"}) {
		t.Errorf("FindPrefix(Self) = %v, want all values", got)
	}

	// Prefix matching goes through the child index, not string prefixes:
	// "a.bb" must not show up under "a.b".
	_ = m.Set("a.bb", "at-bb")
	if got := sortedValues(m.FindPrefix("a.b")); slices.Contains(got, "at-bb") {
		t.Errorf("FindPrefix(a.b) = %v, must not contain at-bb", got)
	}
}

func TestMultiMapDeleteRestoresEmptyState(t *testing.T) {
	m := NewMultiMap[string]()
	_ = m.Set("a.b.c", "v")

	if err := m.Delete("a.b.c", "v"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if m.Has("a.b.c") {
		t.Error("Has(a.b.c) = true after delete, want false")
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d after delete, want 0", m.Len())
	}
	// Ancestor index entries must be pruned: prefix queries come back empty.
	if got := collectSeq(m.FindPrefix("a")); got != nil {
		t.Errorf("FindPrefix(a) = %v after delete, want empty", got)
	}
	if got := collectSeq(m.FindPrefix("a.b")); got != nil {
		t.Errorf("FindPrefix(a.b) = %v after delete, want empty", got)
	}
}

func TestMultiMapDeleteKeepsSiblingIndex(t *testing.T) {
	m := NewMultiMap[string]()
	_ = m.Set("a.b", "one")
	_ = m.Set("a.c", "two")

	_ = m.Delete("a.b", "one")

	if got := sortedValues(m.FindPrefix("a")); !slices.Equal(got, []string{"two"}) {
		t.Errorf("FindPrefix(a) = %v, want [two]", got)
	}
}

func TestMultiMapDeleteAbsent(t *testing.T) {
	m := NewMultiMap[string]()
	_ = m.Set("a", "v")

	if err := m.Delete("a", "other"); err != nil {
		t.Errorf("Delete() of absent value error = %v, want nil", err)
	}
	if err := m.Delete("missing", "v"); err != nil {
		t.Errorf("Delete() of absent path error = %v, want nil", err)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestMultiMapSelfEntries(t *testing.T) {
	m := NewMultiMap[string]()
	_ = m.Set(Self, "whole-object")
	_ = m.Set("a", "field")

	if got := sortedValues(m.FindExact(Self)); !slices.Equal(got, []string{"whole-object"}) {
		t.Errorf("FindExact(Self) = %v, want [whole-object]", got)
	}
	if got := sortedValues(m.FindPrefix(Self)); !slices.Equal(got, []string{"field", "whole-object"}) {
		t.Errorf("FindPrefix(Self) = %v, want both values", got)
	}
}

func TestMultiMapFrozen(t *testing.T) {
	m := NewMultiMap[string]()
	_ = m.Set("a", "v")

	view := m.ToImmutable()

	if !m.Frozen() {
		t.Error("Frozen() = false after ToImmutable")
	}

	err := m.Set("b", "w")
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("Set() after freeze error = %v, want *InvalidStateError", err)
	}
	if err := m.Delete("a", "v"); err == nil {
		t.Error("Delete() after freeze error = nil, want *InvalidStateError")
	}

	// Reads still work through the immutable view.
	if !view.Has("a") {
		t.Error("view.Has(a) = false, want true")
	}
	if view.Len() != 1 {
		t.Errorf("view.Len() = %d, want 1", view.Len())
	}
}
