package user

import (
	"context"
	"time"

	"github.com/gatehouse/visitor-management/internal/auth"
)

// User is the management view of an account. PasswordHash is mapped for
// persistence only and never serialized.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	FirstName    string    `json:"firstName" gorm:"column:first_name"`
	LastName     string    `json:"lastName" gorm:"column:last_name"`
	Role         auth.Role `json:"role"`
	IsActive     bool      `json:"isActive" gorm:"column:is_active"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

// EmployeeRef is the trimmed representation returned by employee search.
type EmployeeRef struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Repository is the data access contract for user management.
type Repository interface {
	List(ctx context.Context, role auth.Role, search string) ([]*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) (*User, error)
	Delete(ctx context.Context, id int64) error
	SearchEmployees(ctx context.Context, query string, limit int) ([]*EmployeeRef, error)
}
