package history

import (
	"fmt"
	"time"
)

// ResolutionError indicates an entry was appended without the resolved
// specifiers reported by the package manager. Entries are never persisted
// half-resolved, so the operation that produced the entry is not logged.
type ResolutionError struct {
	Command  string
	Packages []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf(
		"no resolved versions for %v from %q; the package manager did not confirm the operation, so it was not logged. Re-run the command",
		e.Packages, e.Command)
}

// OrderingError indicates an entry's timestamp is not strictly after the
// last entry's. The log is append-only and strictly time-ordered.
type OrderingError struct {
	Last     time.Time
	Proposed time.Time
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf(
		"history entry timestamp %s is not after the last entry %s; run 'envtrack rebuild' to recover a consistent environment",
		e.Proposed.Format(time.RFC3339Nano), e.Last.Format(time.RFC3339Nano))
}

// CorruptLogError indicates history.yaml could not be decoded into a valid
// entry sequence. Entries are never silently dropped.
type CorruptLogError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptLogError) Error() string {
	return fmt.Sprintf(
		"history file %s is corrupt (%s); restore it from the remote copy or run 'envtrack rebuild'",
		e.Path, e.Reason)
}

func (e *CorruptLogError) Unwrap() error { return e.Err }
