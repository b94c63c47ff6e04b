package store

// Store defines the interface for run persistence. Implementations must be
// safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return a *NotFoundError if the run doesn't exist (Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRun atomically persists a run record, overwriting any existing
	// record with the same run ID.
	SaveRun(runID string, record *RunRecord) error

	// LoadRun retrieves a run record. Returns a *NotFoundError if no run
	// exists for this runID.
	LoadRun(runID string) (*RunRecord, error)

	// ListRuns returns metadata for all persisted runs, which may be empty.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the run record and its evaluation trace.
	// Returns a *NotFoundError if no run exists for this runID.
	DeleteRun(runID string) error
}

// ErrNotFound is a sentinel for errors.Is checks against missing runs.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
