package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gatehouse/visitor-management/internal/audit"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, q audit.ListQuery) ([]*audit.Entry, int64, error) {
	base := r.db.WithContext(ctx).Model(&audit.Entry{})
	if q.Action != "" {
		base = base.Where("action = ?", q.Action)
	}
	if q.EntityType != "" {
		base = base.Where("entity_type = ?", q.EntityType)
	}
	if q.EntityID > 0 {
		base = base.Where("entity_id = ?", q.EntityID)
	}
	if q.UserID > 0 {
		base = base.Where("user_id = ?", q.UserID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	var entries []*audit.Entry
	if err := base.
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, total, nil
}
