package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/visitor"
)

type VisitorRepository struct {
	db *gorm.DB
}

func NewVisitorRepository(db *gorm.DB) *VisitorRepository {
	return &VisitorRepository{db: db}
}

func (r *VisitorRepository) Create(ctx context.Context, v *visitor.Visitor) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		if isUniqueViolation(err) {
			return internalerrors.NewConflictError("Pass number already in use", internalerrors.ErrCodePassNumberTaken)
		}
		return fmt.Errorf("create visitor: %w", err)
	}
	return nil
}

func (r *VisitorRepository) GetByID(ctx context.Context, id int64) (*visitor.Visitor, error) {
	var v visitor.Visitor
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internalerrors.NewNotFoundError("Visitor not found", internalerrors.ErrCodeVisitorNotFound)
		}
		return nil, fmt.Errorf("get visitor by id: %w", err)
	}
	if err := r.attachUserRefs(ctx, []*visitor.Visitor{&v}); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VisitorRepository) List(ctx context.Context, q visitor.ListQuery) ([]*visitor.Visitor, int64, error) {
	base := r.db.WithContext(ctx).Model(&visitor.Visitor{})

	if q.Search != "" {
		pattern := fmt.Sprintf("%%%s%%", q.Search)
		base = base.Where(
			"LOWER(full_name) LIKE LOWER(?) OR contact_number LIKE ? OR LOWER(pass_number) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}
	if q.HostEmployeeID > 0 {
		base = base.Where("host_employee_id = ?", q.HostEmployeeID)
	}
	if q.Company != "" {
		base = base.Where("LOWER(company) LIKE LOWER(?)", fmt.Sprintf("%%%s%%", q.Company))
	}
	if !q.DateFrom.IsZero() {
		base = base.Where("visit_date >= ?", q.DateFrom)
	}
	if !q.DateTo.IsZero() {
		base = base.Where("visit_date <= ?", q.DateTo)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count visitors: %w", err)
	}

	var visitors []*visitor.Visitor
	if err := base.
		Order(q.OrderClause()).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&visitors).Error; err != nil {
		return nil, 0, fmt.Errorf("list visitors: %w", err)
	}
	if err := r.attachUserRefs(ctx, visitors); err != nil {
		return nil, 0, err
	}
	return visitors, total, nil
}

// attachUserRefs resolves the host, creator and approver summaries for a
// page of visitors with a single batched lookup. Missing users leave the
// reference nil rather than failing the read.
func (r *VisitorRepository) attachUserRefs(ctx context.Context, visitors []*visitor.Visitor) error {
	if len(visitors) == 0 {
		return nil
	}

	idSet := map[int64]struct{}{}
	for _, v := range visitors {
		idSet[v.HostEmployeeID] = struct{}{}
		idSet[v.CreatedBy] = struct{}{}
		if v.ApprovedBy != nil {
			idSet[*v.ApprovedBy] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var refs []visitor.UserRef
	if err := r.db.WithContext(ctx).Table("users").
		Select("id, first_name, last_name, email").
		Where("id IN ?", ids).
		Scan(&refs).Error; err != nil {
		return fmt.Errorf("resolve visitor user refs: %w", err)
	}

	byID := make(map[int64]*visitor.UserRef, len(refs))
	for i := range refs {
		byID[refs[i].ID] = &refs[i]
	}
	for _, v := range visitors {
		v.Host = byID[v.HostEmployeeID]
		v.Creator = byID[v.CreatedBy]
		if v.ApprovedBy != nil {
			v.Approver = byID[*v.ApprovedBy]
		}
	}
	return nil
}

// Transition applies updates only when the row is still in the expected
// state, making concurrent transitions race-safe.
func (r *VisitorRepository) Transition(ctx context.Context, id int64, from visitor.Status, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&visitor.Visitor{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("transition visitor: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *VisitorRepository) TransitionFromAny(ctx context.Context, id int64, from []visitor.Status, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&visitor.Visitor{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("transition visitor: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *VisitorRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&visitor.Visitor{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("visitor exists: %w", err)
	}
	return count > 0, nil
}

// DayStats aggregates the dashboard counters for one visit-date window.
func (r *VisitorRepository) DayStats(ctx context.Context, dayStart, dayEnd time.Time) (*visitor.DayStats, error) {
	stats := &visitor.DayStats{}
	day := r.db.WithContext(ctx).Model(&visitor.Visitor{}).
		Where("visit_date >= ? AND visit_date < ?", dayStart, dayEnd)

	if err := day.Session(&gorm.Session{}).Count(&stats.TotalToday).Error; err != nil {
		return nil, fmt.Errorf("count total today: %w", err)
	}
	if err := day.Session(&gorm.Session{}).
		Where("status = ?", visitor.StatusScheduled).
		Count(&stats.ScheduledToday).Error; err != nil {
		return nil, fmt.Errorf("count scheduled today: %w", err)
	}
	if err := day.Session(&gorm.Session{}).
		Where("status = ?", visitor.StatusCheckedOut).
		Count(&stats.CheckedOutToday).Error; err != nil {
		return nil, fmt.Errorf("count checked out today: %w", err)
	}
	// CurrentlyInside is not day-scoped: an overnight visitor still counts.
	if err := r.db.WithContext(ctx).Model(&visitor.Visitor{}).
		Where("status = ?", visitor.StatusCheckedIn).
		Count(&stats.CurrentlyInside).Error; err != nil {
		return nil, fmt.Errorf("count currently inside: %w", err)
	}
	return stats, nil
}

func (r *VisitorRepository) CurrentlyCheckedIn(ctx context.Context) ([]*visitor.Visitor, error) {
	var visitors []*visitor.Visitor
	if err := r.db.WithContext(ctx).
		Where("status = ?", visitor.StatusCheckedIn).
		Order("check_in_time DESC").
		Find(&visitors).Error; err != nil {
		return nil, fmt.Errorf("list checked-in visitors: %w", err)
	}
	if err := r.attachUserRefs(ctx, visitors); err != nil {
		return nil, err
	}
	return visitors, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
