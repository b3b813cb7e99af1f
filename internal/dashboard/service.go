package dashboard

import (
	"context"
	"log/slog"
	"time"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/visitor"
)

// VisitorStore is the slice of the visitor repository the dashboard reads.
type VisitorStore interface {
	DayStats(ctx context.Context, dayStart, dayEnd time.Time) (*visitor.DayStats, error)
	CurrentlyCheckedIn(ctx context.Context) ([]*visitor.Visitor, error)
}

type Service struct {
	store  VisitorStore
	now    func() time.Time
	logger *slog.Logger
}

func NewService(store VisitorStore, logger *slog.Logger) *Service {
	return &Service{store: store, now: time.Now, logger: logger}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Stats returns today's visit counters. "Today" is the local calendar day
// [00:00, 24:00) of the server.
func (s *Service) Stats(ctx context.Context) (*visitor.DayStats, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	stats, err := s.store.DayStats(ctx, dayStart, dayEnd)
	if err != nil {
		s.logger.Error("failed to compute dashboard stats", "error", err)
		return nil, internalerrors.NewInternalError("Failed to fetch dashboard stats", err)
	}
	return stats, nil
}

// CurrentVisitors lists everyone inside the facility, most recent check-in
// first.
func (s *Service) CurrentVisitors(ctx context.Context) ([]*visitor.Visitor, error) {
	visitors, err := s.store.CurrentlyCheckedIn(ctx)
	if err != nil {
		s.logger.Error("failed to list current visitors", "error", err)
		return nil, internalerrors.NewInternalError("Failed to fetch current visitors", err)
	}
	return visitors, nil
}
