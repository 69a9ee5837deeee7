package validate

import (
	"fmt"

	"mercator-hq/callisto/pkg/keypath"
)

// Error is a single validation failure raised somewhere in a tracked
// object's graph. Errors are immutable records created only through an
// ErrorMapBuilder; they are data, never thrown.
type Error struct {
	// KeyPath is where the error was raised, relative to the root of the
	// validator that reported it.
	KeyPath keypath.KeyPath

	// Key is the immediate field of the root object the error bubbles up
	// to: the first segment of KeyPath, or Self when the error targets
	// the object as a whole.
	Key keypath.KeyPath

	// Message is the human-readable reason.
	Message string

	// Cause is the optional underlying error.
	Cause error
}

func newError(path keypath.KeyPath, message string, cause error) *Error {
	return &Error{
		KeyPath: path,
		Key:     path.FirstSegment(),
		Message: message,
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.KeyPath.IsSelf() {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.KeyPath, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// readdressed returns a copy of e with its key path resolved under base,
// used when a parent validator merges a child's errors into its own
// coordinate space.
func (e *Error) readdressed(base keypath.KeyPath) *Error {
	if base.IsSelf() {
		return e
	}
	resolved := base.Resolve(e.KeyPath)
	return &Error{
		KeyPath: resolved,
		Key:     resolved.FirstSegment(),
		Message: e.Message,
		Cause:   e.Cause,
	}
}

// UsageError reports a contract violation by the caller, such as looking up
// a validator for a non-pointer subject or registering a nil handler. These
// indicate bugs the caller can fix immediately and are returned
// synchronously, never collected as validation results.
type UsageError struct {
	Operation string
	Message   string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return fmt.Sprintf("validate: %s: %s", e.Operation, e.Message)
}
