package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/unfold"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ unfold.RunService = (*RunService)(nil)

// RunService implements unfold.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun stores a run and its events in one transaction.
func (s *RunService) CreateRun(ctx context.Context, run *unfold.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, url, behavior, started_at, finished_at, clicks, snapshot_hash, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, run.URL, run.Behavior, formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.Clicks, run.SnapshotHash, run.Error); err != nil {
		return err
	}

	for i, ev := range run.Events {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_events (run_id, position, step, message, time, done)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, i, ev.Step, ev.Message, formatTime(ev.Time), ev.Done); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	run.ID = id
	return nil
}

// FindRunByID retrieves a run and its events.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*unfold.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `
		SELECT id, url, behavior, started_at, finished_at, clicks, snapshot_hash, error
		FROM runs
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, unfold.Errorf(unfold.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	if run.Events, err = s.findEvents(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

// FindRuns retrieves runs matching the filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter unfold.RunFilter) ([]*unfold.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, url, behavior, started_at, finished_at, clicks, snapshot_hash, error FROM runs WHERE 1=1")

	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Behavior != nil {
		query.WriteString(" AND behavior = ?")
		args = append(args, *filter.Behavior)
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*unfold.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *RunService) findEvents(ctx context.Context, runID string) ([]unfold.ProgressEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, message, time, done
		FROM run_events
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []unfold.ProgressEvent
	for rows.Next() {
		var ev unfold.ProgressEvent
		var at string
		if err := rows.Scan(&ev.Step, &ev.Message, &at, &ev.Done); err != nil {
			return nil, err
		}
		if ev.Time, err = parseTime(at, "time"); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*unfold.Run, error) {
	var run unfold.Run
	var startedAt, finishedAt string

	if err := row.Scan(&run.ID, &run.URL, &run.Behavior, &startedAt, &finishedAt,
		&run.Clicks, &run.SnapshotHash, &run.Error); err != nil {
		return nil, err
	}

	var err error
	if run.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime(finishedAt, "finished_at"); err != nil {
		return nil, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return &run, nil
}
