package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the single authorization attribute of a user.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleEmployee     Role = "employee"
	RoleReceptionist Role = "receptionist"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleReceptionist:
		return true
	}
	return false
}

// Account is the persisted user identity. The password hash never appears
// in any serialized representation.
type Account struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	FirstName    string    `json:"firstName" gorm:"column:first_name;not null"`
	LastName     string    `json:"lastName" gorm:"column:last_name;not null"`
	Role         Role      `json:"role" gorm:"not null;default:'employee'"`
	IsActive     bool      `json:"isActive" gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (Account) TableName() string {
	return "users"
}

// Identity is the authenticated caller resolved from an access token.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Claims are the JWT claims encoded into both token kinds.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{ID: c.UserID, Email: c.Email, Role: c.Role}
}

// AuthTokens is the issued token pair.
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenGenerator issues and verifies signed token pairs.
type TokenGenerator interface {
	GenerateAccessToken(identity Identity) (string, error)
	GenerateRefreshToken(identity Identity) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// AccountRepository is the identity store used by the auth service.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
}

type ctxKey string

const contextIdentityKey ctxKey = "identity"

// IdentityFromContext returns the caller stored by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(contextIdentityKey).(Identity)
	return identity, ok
}

// ContextWithIdentity stores the authenticated caller in the context.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, contextIdentityKey, identity)
}
