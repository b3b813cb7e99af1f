package auth

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/gatehouse/visitor-management/internal"
	"golang.org/x/crypto/bcrypt"
)

// Service performs registration, authentication and token lifecycle.
type Service struct {
	accounts   AccountRepository
	tokens     TokenGenerator
	bcryptCost int
	logger     *slog.Logger
}

func NewService(accounts AccountRepository, tokens TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		accounts:   accounts,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
	}
}

// WithBCryptCost overrides the hashing cost, bounded to bcrypt's valid range.
func (s *Service) WithBCryptCost(cost int) *Service {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.bcryptCost = cost
	}
	return s
}

// Register creates an account and issues its first token pair. Email is
// matched case-insensitively; duplicates are a conflict.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*Account, AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, AuthTokens{}, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))

	if existing, err := s.accounts.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, AuthTokens{}, errors.NewConflictError("User with this email already exists", errors.ErrCodeEmailTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, AuthTokens{}, errors.NewInternalError("failed to hash password", err)
	}

	role := dto.Role
	if role == "" {
		role = RoleEmployee
	}

	account := &Account{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(dto.FirstName),
		LastName:     strings.TrimSpace(dto.LastName),
		Role:         role,
		IsActive:     true,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if appErr, ok := errors.IsAppError(err); ok {
			return nil, AuthTokens{}, appErr
		}
		s.logger.Error("failed to create account", "error", err, "email", email)
		return nil, AuthTokens{}, errors.NewInternalError("failed to create user", err)
	}

	tokens, err := s.issueTokens(account)
	if err != nil {
		return nil, AuthTokens{}, err
	}

	s.logger.Info("user registered", "user_id", account.ID, "role", account.Role)
	return account, tokens, nil
}

// Authenticate verifies credentials against the stored hash. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*Account, AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, AuthTokens{}, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil || account == nil {
		return nil, AuthTokens{}, errors.ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, AuthTokens{}, errors.ErrAccountDeactivated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, AuthTokens{}, errors.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(account)
	if err != nil {
		return nil, AuthTokens{}, err
	}

	return account, tokens, nil
}

// RefreshTokens exchanges a valid refresh token for a new pair. The
// referenced user must still exist and be active.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	account, err := s.accounts.FindByID(ctx, claims.UserID)
	if err != nil || account == nil || !account.IsActive {
		return AuthTokens{}, errors.NewUnauthorizedError("User not found or inactive", errors.ErrCodeUserInactive)
	}

	return s.issueTokens(account)
}

// ValidateAccessToken resolves the caller from a bearer token.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

// CurrentUser loads the caller's own account.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*Account, error) {
	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil || account == nil {
		return nil, errors.NewNotFoundError("User not found", errors.ErrCodeUserNotFound)
	}
	return account, nil
}

func (s *Service) issueTokens(account *Account) (AuthTokens, error) {
	identity := Identity{ID: account.ID, Email: account.Email, Role: account.Role}

	accessToken, err := s.tokens.GenerateAccessToken(identity)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to sign access token", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(identity)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to sign refresh token", err)
	}

	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
