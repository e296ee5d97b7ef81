package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/unfold"
)

// Ensure LoggingRunService implements unfold.RunService.
var _ unfold.RunService = (*LoggingRunService)(nil)

// LoggingRunService wraps a RunService with logging of writes.
type LoggingRunService struct {
	next   unfold.RunService
	logger *slog.Logger
}

// NewLoggingRunService creates a new LoggingRunService.
func NewLoggingRunService(next unfold.RunService, logger *slog.Logger) *LoggingRunService {
	return &LoggingRunService{next: next, logger: logger}
}

// CreateRun delegates to the wrapped service and logs the stored run.
func (s *LoggingRunService) CreateRun(ctx context.Context, run *unfold.Run) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("record run",
			"id", run.ID,
			"url", run.URL,
			"behavior", run.Behavior,
			"clicks", run.Clicks,
			"events", len(run.Events),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateRun(ctx, run)
}

// FindRunByID delegates to the wrapped service.
func (s *LoggingRunService) FindRunByID(ctx context.Context, id string) (*unfold.Run, error) {
	return s.next.FindRunByID(ctx, id)
}

// FindRuns delegates to the wrapped service.
func (s *LoggingRunService) FindRuns(ctx context.Context, filter unfold.RunFilter) ([]*unfold.Run, error) {
	return s.next.FindRuns(ctx, filter)
}
