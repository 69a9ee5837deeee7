package validate

import (
	"errors"
	"testing"

	"mercator-hq/callisto/pkg/keypath"
)

func mapErrors(m ErrorMap, path keypath.KeyPath, prefix bool) []*Error {
	var out []*Error
	seq := m.FindExact(path)
	if prefix {
		seq = m.FindPrefix(path)
	}
	for e := range seq {
		out = append(out, e)
	}
	return out
}

func TestBuilderInvalidate(t *testing.T) {
	b := NewErrorMapBuilder()
	b.Invalidate("name", "name is required")

	if !b.HasError() {
		t.Error("HasError() = false after Invalidate")
	}

	m := b.Build()
	got := mapErrors(m, "name", false)
	if len(got) != 1 {
		t.Fatalf("errors at name = %d, want 1", len(got))
	}
	if got[0].KeyPath != "name" {
		t.Errorf("KeyPath = %q, want name", got[0].KeyPath)
	}
	if got[0].Key != "name" {
		t.Errorf("Key = %q, want name", got[0].Key)
	}
	if got[0].Message != "name is required" {
		t.Errorf("Message = %q", got[0].Message)
	}
	if got[0].Cause != nil {
		t.Errorf("Cause = %v, want nil", got[0].Cause)
	}
}

func TestBuilderInvalidateCause(t *testing.T) {
	cause := errors.New("lookup failed")
	b := NewErrorMapBuilder()
	b.InvalidateCause("email", "email could not be verified", cause)

	got := mapErrors(b.Build(), "email", false)
	if len(got) != 1 {
		t.Fatalf("errors at email = %d, want 1", len(got))
	}
	if !errors.Is(got[0], cause) {
		t.Errorf("errors.Is(err, cause) = false, want unwrap to cause")
	}
}

func TestBuilderInvalidateSelf(t *testing.T) {
	b := NewErrorMapBuilder()
	b.InvalidateSelf("object is inconsistent")

	got := mapErrors(b.Build(), keypath.Self, false)
	if len(got) != 1 {
		t.Fatalf("errors at Self = %d, want 1", len(got))
	}
	if !got[0].KeyPath.IsSelf() {
		t.Errorf("KeyPath = %q, want Self", got[0].KeyPath)
	}
	if !got[0].Key.IsSelf() {
		t.Errorf("Key = %q, want Self", got[0].Key)
	}
	if got[0].Error() != "object is inconsistent" {
		t.Errorf("Error() = %q", got[0].Error())
	}
}

func TestBuilderEmptyResult(t *testing.T) {
	b := NewErrorMapBuilder()

	if b.HasError() {
		t.Error("HasError() = true on fresh builder")
	}

	m := b.Build()
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestBuilderResultIsFrozen(t *testing.T) {
	b := NewErrorMapBuilder()
	b.Invalidate("a", "bad")
	b.Build()

	// The builder finalized its map in place; further writes are a
	// contract violation surfaced as an InvalidStateError in the bucket.
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("mutating after Build panicked: %v", r)
		}
	}()
	b.Invalidate("b", "too late") // silently rejected by the frozen map
	if got := mapErrors(b.m.ToImmutable(), "b", false); got != nil {
		t.Errorf("errors at b = %v after post-Build write, want none", got)
	}
}

func TestErrorString(t *testing.T) {
	b := NewErrorMapBuilder()
	b.Invalidate("address.street", "street is required")

	got := mapErrors(b.Build(), "address.street", false)
	if len(got) != 1 {
		t.Fatal("expected one error")
	}
	if got[0].Error() != "address.street: street is required" {
		t.Errorf("Error() = %q", got[0].Error())
	}
	if got[0].Key != "address" {
		t.Errorf("Key = %q, want address (first segment)", got[0].Key)
	}
}
