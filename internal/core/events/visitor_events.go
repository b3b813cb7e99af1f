package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeVisitorCreated    = "visitor.created"
	EventTypeVisitorUpdated    = "visitor.updated"
	EventTypeVisitorApproved   = "visitor.approved"
	EventTypeVisitorCheckedIn  = "visitor.checked_in"
	EventTypeVisitorCheckedOut = "visitor.checked_out"
	EventTypeVisitorCancelled  = "visitor.cancelled"
)

// VisitorEvent describes one state change of a visitor record. ActorID is
// the user that performed the action; HostEmployeeID the visitor's host.
type VisitorEvent struct {
	BaseEvent
	VisitorID      int64                  `json:"visitor_id"`
	VisitorName    string                 `json:"visitor_name"`
	PassNumber     string                 `json:"pass_number"`
	HostEmployeeID int64                  `json:"host_employee_id"`
	ActorID        int64                  `json:"actor_id"`
	GateNumber     string                 `json:"gate_number,omitempty"`
	Changes        map[string]interface{} `json:"changes,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

func NewVisitorEvent(eventType string, visitorID int64, actorID int64) *VisitorEvent {
	return &VisitorEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"visitor_id": visitorID,
				"actor_id":   actorID,
			},
		},
		VisitorID: visitorID,
		ActorID:   actorID,
	}
}

func (e *VisitorEvent) WithVisitor(name, passNumber string, hostEmployeeID int64) *VisitorEvent {
	e.VisitorName = name
	e.PassNumber = passNumber
	e.HostEmployeeID = hostEmployeeID
	return e
}

func (e *VisitorEvent) WithGate(gate string) *VisitorEvent {
	e.GateNumber = gate
	return e
}

func (e *VisitorEvent) WithChanges(changes map[string]interface{}) *VisitorEvent {
	e.Changes = changes
	return e
}

func (e *VisitorEvent) WithMetadata(metadata map[string]interface{}) *VisitorEvent {
	e.Metadata = metadata
	return e
}
