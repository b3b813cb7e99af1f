package user

import (
	"context"
	"log/slog"
	"strings"

	internalerrors "github.com/gatehouse/visitor-management/internal"
)

const employeeSearchLimit = 10

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]*User, error) {
	if q.Role != "" && !q.Role.Valid() {
		return nil, internalerrors.NewValidationError("Invalid role filter", internalerrors.ErrCodeValidationFailed)
	}
	users, err := s.repo.List(ctx, q.Role, strings.TrimSpace(q.Search))
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internalerrors.NewInternalError("Failed to fetch users", err)
	}
	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if appErr, ok := internalerrors.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to fetch user", "user_id", id, "error", err)
		return nil, internalerrors.NewInternalError("Failed to fetch user", err)
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateUserDTO) (*User, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	updates := dto.Updates()
	if len(updates) == 0 {
		return s.GetByID(ctx, id)
	}

	u, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if appErr, ok := internalerrors.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, internalerrors.NewInternalError("Failed to update user", err)
	}

	s.logger.Info("user updated", "user_id", u.ID, "fields", len(updates))
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if appErr, ok := internalerrors.IsAppError(err); ok {
			return appErr
		}
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return internalerrors.NewInternalError("Failed to delete user", err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// SearchEmployees returns active employees matching the query, used by the
// visitor form to pick a host.
func (s *Service) SearchEmployees(ctx context.Context, query string) ([]*EmployeeRef, error) {
	refs, err := s.repo.SearchEmployees(ctx, strings.TrimSpace(query), employeeSearchLimit)
	if err != nil {
		s.logger.Error("failed to search employees", "error", err)
		return nil, internalerrors.NewInternalError("Failed to search employees", err)
	}
	return refs, nil
}
