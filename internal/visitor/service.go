package visitor

import (
	"context"
	"log/slog"
	"time"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/auth"
	"github.com/gatehouse/visitor-management/internal/core/events"
)

// passNumberRetries bounds the regeneration attempts on a pass collision.
const passNumberRetries = 3

// EventPublisher lets the service announce lifecycle changes. Side effects
// (audit trail, notifications) hang off the bus and never fail the request.
type EventPublisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      Repository
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

func (s *Service) Create(ctx context.Context, actor auth.Identity, dto CreateVisitorDTO) (*Visitor, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	v := &Visitor{
		FullName:       dto.FullName,
		Company:        dto.Company,
		ContactNumber:  dto.ContactNumber,
		Email:          dto.Email,
		Purpose:        dto.Purpose,
		HostEmployeeID: dto.HostEmployeeID,
		VisitDate:      dto.VisitDate,
		IDNumber:       dto.IDNumber,
		Remarks:        dto.Remarks,
		Status:         StatusScheduled,
		CreatedBy:      actor.ID,
	}

	var err error
	for attempt := 0; attempt < passNumberRetries; attempt++ {
		v.PassNumber = GeneratePassNumber()
		err = s.repo.Create(ctx, v)
		if err == nil {
			break
		}
		appErr, ok := internalerrors.IsAppError(err)
		if !ok || appErr.Code != internalerrors.ErrCodePassNumberTaken {
			break
		}
	}
	if err != nil {
		if appErr, ok := internalerrors.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create visitor", "error", err)
		return nil, internalerrors.NewInternalError("Failed to create visitor", err)
	}

	s.publish(ctx, events.NewVisitorEvent(events.EventTypeVisitorCreated, v.ID, actor.ID).
		WithVisitor(v.FullName, v.PassNumber, v.HostEmployeeID))

	s.logger.Info("visitor created", "visitor_id", v.ID, "pass_number", v.PassNumber)
	return v, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Visitor, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if appErr, ok := internalerrors.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to fetch visitor", "visitor_id", id, "error", err)
		return nil, internalerrors.NewInternalError("Failed to fetch visitor", err)
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]*Visitor, int64, error) {
	visitors, total, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error("failed to list visitors", "error", err)
		return nil, 0, internalerrors.NewInternalError("Failed to fetch visitors", err)
	}
	return visitors, total, nil
}

// Update changes visit details. Visits that already ended cannot be edited.
func (s *Service) Update(ctx context.Context, actor auth.Identity, id int64, dto UpdateVisitorDTO) (*Visitor, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	updates := dto.Updates()
	if len(updates) == 0 {
		return s.GetByID(ctx, id)
	}

	// Conditional on a live status so a concurrent check-out or cancel
	// cannot be overwritten between read and write.
	affected, err := s.repo.TransitionFromAny(ctx, id, []Status{StatusScheduled, StatusCheckedIn}, updates)
	if err != nil {
		s.logger.Error("failed to update visitor", "visitor_id", id, "error", err)
		return nil, internalerrors.NewInternalError("Failed to update visitor", err)
	}
	if affected == 0 {
		return nil, s.transitionConflict(ctx, id, "Cannot update visitor with checked-out or cancelled status")
	}

	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	for k := range updates {
		changes[k] = updates[k]
	}
	s.publish(ctx, events.NewVisitorEvent(events.EventTypeVisitorUpdated, v.ID, actor.ID).
		WithVisitor(v.FullName, v.PassNumber, v.HostEmployeeID).
		WithChanges(changes))

	return v, nil
}

// Approve records the host's sign-off on a scheduled visit. Only the host
// employee may approve, regardless of role.
func (s *Service) Approve(ctx context.Context, actor auth.Identity, id int64) (*Visitor, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.HostEmployeeID != actor.ID {
		return nil, internalerrors.NewForbiddenError("Only the host employee can approve this visitor", internalerrors.ErrCodeNotHost)
	}
	if current.Status != StatusScheduled {
		return nil, internalerrors.NewValidationError(
			"Only scheduled visitors can be approved", internalerrors.ErrCodeInvalidStatus)
	}

	affected, err := s.repo.Transition(ctx, id, StatusScheduled, map[string]interface{}{
		"approved_by": actor.ID,
	})
	if err != nil {
		s.logger.Error("failed to approve visitor", "visitor_id", id, "error", err)
		return nil, internalerrors.NewInternalError("Failed to approve visitor", err)
	}
	if affected == 0 {
		return nil, s.transitionConflict(ctx, id, "Only scheduled visitors can be approved")
	}

	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewVisitorEvent(events.EventTypeVisitorApproved, v.ID, actor.ID).
		WithVisitor(v.FullName, v.PassNumber, v.HostEmployeeID))

	s.logger.Info("visitor approved", "visitor_id", v.ID, "approved_by", actor.ID)
	return v, nil
}

// CheckIn moves a scheduled visitor to CheckedIn. The conditional update
// guarantees at most one concurrent check-in succeeds.
func (s *Service) CheckIn(ctx context.Context, actor auth.Identity, id int64, dto CheckInDTO) (*Visitor, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	now := time.Now()
	affected, err := s.repo.Transition(ctx, id, StatusScheduled, map[string]interface{}{
		"status":        StatusCheckedIn,
		"gate_number":   dto.GateNumber,
		"check_in_time": now,
	})
	if err != nil {
		s.logger.Error("failed to check in visitor", "visitor_id", id, "error", err)
		return nil, internalerrors.NewInternalError("Failed to check in visitor", err)
	}
	if affected == 0 {
		return nil, s.transitionConflict(ctx, id, "Only scheduled visitors can be checked in")
	}

	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewVisitorEvent(events.EventTypeVisitorCheckedIn, v.ID, actor.ID).
		WithVisitor(v.FullName, v.PassNumber, v.HostEmployeeID).
		WithGate(dto.GateNumber))

	s.logger.Info("visitor checked in", "visitor_id", v.ID, "gate", dto.GateNumber)
	return v, nil
}

// CheckOut moves a checked-in visitor to CheckedOut.
func (s *Service) CheckOut(ctx context.Context, actor auth.Identity, id int64) (*Visitor, error) {
	now := time.Now()
	affected, err := s.repo.Transition(ctx, id, StatusCheckedIn, map[string]interface{}{
		"status":         StatusCheckedOut,
		"check_out_time": now,
	})
	if err != nil {
		s.logger.Error("failed to check out visitor", "visitor_id", id, "error", err)
		return nil, internalerrors.NewInternalError("Failed to check out visitor", err)
	}
	if affected == 0 {
		return nil, s.transitionConflict(ctx, id, "Only checked-in visitors can be checked out")
	}

	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewVisitorEvent(events.EventTypeVisitorCheckedOut, v.ID, actor.ID).
		WithVisitor(v.FullName, v.PassNumber, v.HostEmployeeID))

	s.logger.Info("visitor checked out", "visitor_id", v.ID)
	return v, nil
}

// Cancel voids any visit that has not already ended.
func (s *Service) Cancel(ctx context.Context, actor auth.Identity, id int64) (*Visitor, error) {
	affected, err := s.repo.TransitionFromAny(ctx, id, []Status{StatusScheduled, StatusCheckedIn},
		map[string]interface{}{"status": StatusCancelled})
	if err != nil {
		s.logger.Error("failed to cancel visitor", "visitor_id", id, "error", err)
		return nil, internalerrors.NewInternalError("Failed to cancel visitor", err)
	}
	if affected == 0 {
		return nil, s.transitionConflict(ctx, id, "Cannot cancel this visitor")
	}

	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewVisitorEvent(events.EventTypeVisitorCancelled, v.ID, actor.ID).
		WithVisitor(v.FullName, v.PassNumber, v.HostEmployeeID))

	s.logger.Info("visitor cancelled", "visitor_id", v.ID)
	return v, nil
}

// transitionConflict distinguishes a missing row from a wrong-state row after
// a conditional update touched nothing.
func (s *Service) transitionConflict(ctx context.Context, id int64, message string) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		s.logger.Error("failed to probe visitor existence", "visitor_id", id, "error", err)
		return internalerrors.NewInternalError("Failed to fetch visitor", err)
	}
	if !exists {
		return internalerrors.NewNotFoundError("Visitor not found", internalerrors.ErrCodeVisitorNotFound)
	}
	return internalerrors.NewValidationError(message, internalerrors.ErrCodeInvalidStatus)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSync(ctx, event); err != nil {
		s.logger.Error("visitor event side effects failed",
			"event_type", event.EventType(), "error", err)
	}
}
