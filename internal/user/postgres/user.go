package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/auth"
	"github.com/gatehouse/visitor-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context, role auth.Role, search string) ([]*user.User, error) {
	q := r.db.WithContext(ctx).Model(&user.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if search != "" {
		pattern := fmt.Sprintf("%%%s%%", search)
		q = q.Where(
			"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}

	var users []*user.User
	if err := q.Order("first_name ASC, last_name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internalerrors.NewNotFoundError("User not found", internalerrors.ErrCodeUserNotFound)
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) (*user.User, error) {
	result := r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, internalerrors.NewNotFoundError("User not found", internalerrors.ErrCodeUserNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&user.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return internalerrors.NewNotFoundError("User not found", internalerrors.ErrCodeUserNotFound)
	}
	return nil
}

func (r *UserRepository) SearchEmployees(ctx context.Context, query string, limit int) ([]*user.EmployeeRef, error) {
	q := r.db.WithContext(ctx).Model(&user.User{}).
		Where("role = ? AND is_active = ?", auth.RoleEmployee, true)
	if query != "" {
		pattern := fmt.Sprintf("%%%s%%", query)
		q = q.Where(
			"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}

	var refs []*user.EmployeeRef
	if err := q.Select("id", "first_name", "last_name", "email").
		Order("first_name ASC").
		Limit(limit).
		Scan(&refs).Error; err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}
	return refs, nil
}
