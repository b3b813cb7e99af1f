package postgres

import (
	"context"
	"errors"
	"strings"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/auth"
	"gorm.io/gorm"
)

// AccountRepository implements auth.AccountRepository using GORM.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	err := r.db.WithContext(ctx).Create(account).Error
	if err != nil && isUniqueViolation(err) {
		return internalerrors.NewConflictError("User with this email already exists", internalerrors.ErrCodeEmailTaken)
	}
	return err
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	var account auth.Account
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internalerrors.NewNotFoundError("User not found", internalerrors.ErrCodeUserNotFound)
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*auth.Account, error) {
	var account auth.Account
	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internalerrors.NewNotFoundError("User not found", internalerrors.ErrCodeUserNotFound)
		}
		return nil, err
	}
	return &account, nil
}

// isUniqueViolation matches the unique-index error text of both the
// postgres driver and the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		errors.Is(err, gorm.ErrDuplicatedKey)
}
