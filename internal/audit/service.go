package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/core/events"
)

const visitorEntityType = "Visitor"

// actionsByEvent maps visitor lifecycle events to audit trail actions.
var actionsByEvent = map[string]Action{
	events.EventTypeVisitorCreated:    ActionCreateVisitor,
	events.EventTypeVisitorUpdated:    ActionUpdateVisitor,
	events.EventTypeVisitorApproved:   ActionApproveVisitor,
	events.EventTypeVisitorCheckedIn:  ActionCheckedIn,
	events.EventTypeVisitorCheckedOut: ActionCheckOut,
	events.EventTypeVisitorCancelled:  ActionCancelVisitor,
}

// Service records the audit trail. It consumes visitor events off the bus;
// recording is best-effort and never blocks the originating request.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Subscribe registers the recorder for every visitor lifecycle event.
func (s *Service) Subscribe(bus *events.EventBus) {
	for eventType := range actionsByEvent {
		bus.Subscribe(eventType, s.handleVisitorEvent)
	}
}

func (s *Service) handleVisitorEvent(ctx context.Context, event events.Event) error {
	ve, ok := event.(*events.VisitorEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	action, ok := actionsByEvent[event.EventType()]
	if !ok {
		return nil
	}

	entry := &Entry{
		Action:     action,
		EntityType: visitorEntityType,
		EntityID:   ve.VisitorID,
		UserID:     ve.ActorID,
	}
	if len(ve.Changes) > 0 {
		if raw, err := json.Marshal(ve.Changes); err == nil {
			entry.Changes = raw
		}
	}
	metadata := map[string]interface{}{}
	for k, v := range ve.Metadata {
		metadata[k] = v
	}
	if ve.PassNumber != "" {
		metadata["passNumber"] = ve.PassNumber
	}
	if ve.GateNumber != "" {
		metadata["gateNumber"] = ve.GateNumber
	}
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = raw
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to record audit entry",
			"action", action, "entity_id", ve.VisitorID, "error", err)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]*Entry, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	entries, total, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		return nil, 0, internalerrors.NewInternalError("Failed to fetch audit logs", err)
	}
	return entries, total, nil
}
