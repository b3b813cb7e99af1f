package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Action is the recorded operation name, kept stable for reporting.
type Action string

const (
	ActionCreateVisitor  Action = "CREATE_VISITOR"
	ActionUpdateVisitor  Action = "UPDATE_VISITOR"
	ActionApproveVisitor Action = "APPROVE_VISITOR"
	ActionCheckedIn      Action = "CHECKED_IN"
	ActionCheckOut       Action = "CHECK_OUT"
	ActionCancelVisitor  Action = "CANCEL_VISITOR"
)

// Entry is one immutable audit trail row. Entries reference entities by id
// only, so they outlive the records they describe.
type Entry struct {
	ID         int64           `json:"id" gorm:"primaryKey"`
	Action     Action          `json:"action" gorm:"index;not null"`
	EntityType string          `json:"entityType" gorm:"column:entity_type;not null"`
	EntityID   int64           `json:"entityId" gorm:"column:entity_id;index;not null"`
	UserID     int64           `json:"userId" gorm:"column:user_id;index;not null"`
	Changes    json.RawMessage `json:"changes,omitempty" gorm:"type:jsonb"`
	Metadata   json.RawMessage `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time       `json:"createdAt" gorm:"column:created_at;index"`
}

func (Entry) TableName() string {
	return "audit_logs"
}

// ListQuery filters the audit trail listing.
type ListQuery struct {
	Action     Action
	EntityType string
	EntityID   int64
	UserID     int64
	Page       int
	Limit      int
}

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, q ListQuery) ([]*Entry, int64, error)
}
