package unfold

import (
	"context"
	"time"
)

// Run records one behavior run over one page.
type Run struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Behavior   string    `json:"behavior"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	// Clicks counts successful clicks across all steps.
	Clicks int `json:"clicks"`

	// SnapshotHash fingerprints the HTML captured after the run.
	SnapshotHash string `json:"snapshotHash"`

	// Error is set when the page could not be opened or captured.
	// Step failures are reported as events and never set Error.
	Error string `json:"error"`

	Events []ProgressEvent `json:"events"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "run URL required")
	}
	if r.StartedAt.IsZero() {
		return Errorf(EINVALID, "run start time required")
	}
	return nil
}

// Completed reports whether the run's event stream reached its terminal event.
func (r *Run) Completed() bool {
	return len(r.Events) > 0 && r.Events[len(r.Events)-1].Done
}

// RunService represents a service for recording behavior runs.
type RunService interface {
	// CreateRun stores a run with its events and assigns its ID.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run and its events.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs matching the filter, newest first.
	// Events are not loaded.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	URL      *string `json:"url"`
	Behavior *string `json:"behavior"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SnapshotStore persists page snapshots with atomic semantics.
// Save writes to a temporary location; Commit makes changes permanent;
// Abort discards pending changes.
type SnapshotStore interface {
	Save(ctx context.Context, url string, html string) error
	Commit() error
	Abort() error
}
