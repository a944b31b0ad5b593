package scheduler

import (
	"errors"
	"fmt"
)

// ErrConflictsChanged is returned by ApplyChange when the live conflict set no
// longer matches what the caller previewed. The caller should re-run the
// conflict check and confirm again.
var ErrConflictsChanged = errors.New("schedule changed since preview, re-run the conflict check")

// ConflictsChangedError carries the live conflict report on the rejection so
// the operator sees which appointments block the commit without a second
// preview round trip. errors.Is(err, ErrConflictsChanged) matches it.
type ConflictsChangedError struct {
	Report *ConflictReport
}

func (e *ConflictsChangedError) Error() string { return ErrConflictsChanged.Error() }

func (e *ConflictsChangedError) Is(target error) bool { return target == ErrConflictsChanged }

func conflictsChanged(report *ConflictReport) error {
	return &ConflictsChangedError{Report: report}
}

// ValidationError marks malformed input: bad duration, inverted date range,
// malformed horizon. Nothing is mutated when one is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PersistenceError wraps a failed read or write against the database. When a
// commit returns one, the transaction has been rolled back and no partial
// writes survive.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
