package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gatehouse/visitor-management/internal/notification"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByUser returns the newest notifications first, joined against the
// visitors table so responses carry the visitor's name and pass number.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*notification.Notification, error) {
	q := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Select("notifications.*, visitors.full_name AS visitor_name, visitors.pass_number AS visitor_pass_number").
		Joins("LEFT JOIN visitors ON visitors.id = notifications.visitor_id").
		Where("notifications.user_id = ?", userID)
	if unreadOnly {
		q = q.Where("notifications.is_read = ?", false)
	}

	var items []*notification.Notification
	if err := q.Order("notifications.created_at DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("mark notification read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}
