package notification

import (
	"context"
	"fmt"
	"log/slog"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/core/events"
)

// listCap bounds the notification feed.
const listCap = 50

// Service manages in-app notifications and reacts to visitor check-ins by
// notifying the host.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Subscribe registers the host notifier for check-in events.
func (s *Service) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeVisitorCheckedIn, s.handleCheckedIn)
}

func (s *Service) handleCheckedIn(ctx context.Context, event events.Event) error {
	ve, ok := event.(*events.VisitorEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	if ve.HostEmployeeID == 0 {
		return nil
	}

	n := &Notification{
		UserID:    ve.HostEmployeeID,
		Title:     "Visitor checked in",
		Message:   fmt.Sprintf("%s has checked in at gate %s", ve.VisitorName, ve.GateNumber),
		Type:      TypeInfo,
		VisitorID: &ve.VisitorID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to create check-in notification",
			"host_employee_id", ve.HostEmployeeID, "visitor_id", ve.VisitorID, "error", err)
		return err
	}
	return nil
}

// List returns the newest notifications for the user, at most 50.
func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool) ([]*Notification, int64, error) {
	items, err := s.repo.ListByUser(ctx, userID, unreadOnly, listCap)
	if err != nil {
		s.logger.Error("failed to list notifications", "user_id", userID, "error", err)
		return nil, 0, internalerrors.NewInternalError("Failed to fetch notifications", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("failed to count unread notifications", "user_id", userID, "error", err)
		return nil, 0, internalerrors.NewInternalError("Failed to fetch notifications", err)
	}
	return items, unread, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	affected, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		s.logger.Error("failed to mark notification read", "notification_id", id, "error", err)
		return internalerrors.NewInternalError("Failed to update notification", err)
	}
	if affected == 0 {
		return internalerrors.NewNotFoundError("Notification not found", internalerrors.ErrCodeNotifNotFound)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read. Calling
// it with nothing unread is not an error.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	if _, err := s.repo.MarkAllRead(ctx, userID); err != nil {
		s.logger.Error("failed to mark notifications read", "user_id", userID, "error", err)
		return internalerrors.NewInternalError("Failed to update notifications", err)
	}
	return nil
}
