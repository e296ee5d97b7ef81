package mock

import (
	"context"

	"github.com/fwojciec/unfold"
)

// Compile-time interface verification.
var (
	_ unfold.RunService    = (*RunService)(nil)
	_ unfold.SnapshotStore = (*SnapshotStore)(nil)
	_ unfold.DomainLimiter = (*DomainLimiter)(nil)
)

// RunService is a mock implementation of unfold.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *unfold.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*unfold.Run, error)
	FindRunsFn    func(ctx context.Context, filter unfold.RunFilter) ([]*unfold.Run, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *unfold.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*unfold.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter unfold.RunFilter) ([]*unfold.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

// SnapshotStore is a mock implementation of unfold.SnapshotStore.
type SnapshotStore struct {
	SaveFn   func(ctx context.Context, url string, html string) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *SnapshotStore) Save(ctx context.Context, url string, html string) error {
	return s.SaveFn(ctx, url, html)
}

func (s *SnapshotStore) Commit() error {
	return s.CommitFn()
}

func (s *SnapshotStore) Abort() error {
	return s.AbortFn()
}

// DomainLimiter is a mock implementation of unfold.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
