package notification

import (
	"context"
	"time"
)

// Type classifies a notification for display.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Notification is an in-app message for one user.
type Notification struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"userId" gorm:"column:user_id;index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Message   string    `json:"message" gorm:"not null"`
	Type      Type      `json:"type" gorm:"default:'info'"`
	IsRead    bool      `json:"isRead" gorm:"column:is_read;index;default:false"`
	VisitorID *int64    `json:"visitorId,omitempty" gorm:"column:visitor_id"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;index"`

	// Filled from the visitors table when the notification references one.
	VisitorName       string `json:"visitorName,omitempty" gorm:"->;-:migration"`
	VisitorPassNumber string `json:"visitorPassNumber,omitempty" gorm:"->;-:migration"`
}

func (Notification) TableName() string {
	return "notifications"
}

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, id int64) (int64, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}
