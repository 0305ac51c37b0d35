package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a session id does not resolve to a stored session.
var ErrNotFound = errors.New("session not found")

// ValidationError reports a value that failed its construction invariant.
// It is always raised at the construction or mutation call site, never later.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConflictError is returned by a store when a session's persisted version has
// advanced since the snapshot being saved was loaded. The caller is expected
// to reload and retry the mutation.
type ConflictError struct {
	SessionID SessionID
	Expected  int64
	Found     int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict on session %s: expected %d, found %d", e.SessionID, e.Expected, e.Found)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
