package user_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/auth"
	"github.com/gatehouse/visitor-management/internal/user"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type mockUserRepository struct {
	users      map[int64]*user.User
	listError  error
	lastSearch string
	lastLimit  int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: map[int64]*user.User{}}
}

func (m *mockUserRepository) List(_ context.Context, role auth.Role, search string) ([]*user.User, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	m.lastSearch = search
	var out []*user.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Email), strings.ToLower(search)) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internalerrors.NewNotFoundError("User not found", internalerrors.ErrCodeUserNotFound)
	}
	return u, nil
}

func (m *mockUserRepository) Update(_ context.Context, id int64, updates map[string]interface{}) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internalerrors.NewNotFoundError("User not found", internalerrors.ErrCodeUserNotFound)
	}
	for col, val := range updates {
		switch col {
		case "first_name":
			u.FirstName = val.(string)
		case "last_name":
			u.LastName = val.(string)
		case "role":
			u.Role = val.(auth.Role)
		case "is_active":
			u.IsActive = val.(bool)
		}
	}
	return u, nil
}

func (m *mockUserRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return internalerrors.NewNotFoundError("User not found", internalerrors.ErrCodeUserNotFound)
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) SearchEmployees(_ context.Context, query string, limit int) ([]*user.EmployeeRef, error) {
	m.lastSearch = query
	m.lastLimit = limit
	var out []*user.EmployeeRef
	for _, u := range m.users {
		if u.Role != auth.RoleEmployee || !u.IsActive {
			continue
		}
		out = append(out, &user.EmployeeRef{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email})
	}
	return out, nil
}

var _ = Describe("UserService", func() {
	var (
		service  *user.Service
		mockRepo *mockUserRepository
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		mockRepo.users[1] = &user.User{ID: 1, Email: "admin@gatehouse.local", FirstName: "Ada", LastName: "Root", Role: auth.RoleAdmin, IsActive: true}
		mockRepo.users[2] = &user.User{ID: 2, Email: "host@gatehouse.local", FirstName: "Hugo", LastName: "Vale", Role: auth.RoleEmployee, IsActive: true}
		mockRepo.users[3] = &user.User{ID: 3, Email: "former@gatehouse.local", FirstName: "Faye", LastName: "Moss", Role: auth.RoleEmployee, IsActive: false}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, logger)
		ctx = context.Background()
	})

	Describe("List", func() {
		It("filters by role", func() {
			users, err := service.List(ctx, user.ListQuery{Role: auth.RoleEmployee})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
		})

		It("rejects an unknown role filter", func() {
			_, err := service.List(ctx, user.ListQuery{Role: "superuser"})
			appErr, ok := internalerrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internalerrors.ErrorTypeValidation))
		})

		It("trims the search term before querying", func() {
			_, err := service.List(ctx, user.ListQuery{Search: "  host  "})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.lastSearch).To(Equal("host"))
		})

		It("wraps repository failures", func() {
			mockRepo.listError = errors.New("connection refused")
			_, err := service.List(ctx, user.ListQuery{})
			appErr, ok := internalerrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internalerrors.ErrorTypeInternal))
		})
	})

	Describe("Update", func() {
		It("applies only the provided fields", func() {
			first := "Hubert"
			updated, err := service.Update(ctx, 2, user.UpdateUserDTO{FirstName: &first})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FirstName).To(Equal("Hubert"))
			Expect(updated.LastName).To(Equal("Vale"))
			Expect(updated.Role).To(Equal(auth.RoleEmployee))
		})

		It("can deactivate an account", func() {
			active := false
			updated, err := service.Update(ctx, 2, user.UpdateUserDTO{IsActive: &active})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
		})

		It("returns the current record when nothing changes", func() {
			updated, err := service.Update(ctx, 2, user.UpdateUserDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FirstName).To(Equal("Hugo"))
		})

		It("rejects an invalid role", func() {
			bad := auth.Role("superuser")
			_, err := service.Update(ctx, 2, user.UpdateUserDTO{Role: &bad})
			appErr, ok := internalerrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internalerrors.ErrorTypeValidation))
		})

		It("rejects a blank first name", func() {
			blank := ""
			_, err := service.Update(ctx, 2, user.UpdateUserDTO{FirstName: &blank})
			appErr, ok := internalerrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internalerrors.ErrorTypeValidation))
		})

		It("returns not found for a missing user", func() {
			first := "Nobody"
			_, err := service.Update(ctx, 99, user.UpdateUserDTO{FirstName: &first})
			appErr, ok := internalerrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internalerrors.ErrCodeUserNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the user", func() {
			Expect(service.Delete(ctx, 3)).To(Succeed())
			_, err := service.GetByID(ctx, 3)
			appErr, ok := internalerrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internalerrors.ErrCodeUserNotFound))
		})

		It("returns not found for a missing user", func() {
			err := service.Delete(ctx, 99)
			appErr, ok := internalerrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internalerrors.ErrCodeUserNotFound))
		})
	})

	Describe("SearchEmployees", func() {
		It("returns only active employees and caps the result size", func() {
			refs, err := service.SearchEmployees(ctx, " vale ")
			Expect(err).NotTo(HaveOccurred())
			Expect(refs).To(HaveLen(1))
			Expect(refs[0].Email).To(Equal("host@gatehouse.local"))
			Expect(mockRepo.lastSearch).To(Equal("vale"))
			Expect(mockRepo.lastLimit).To(Equal(10))
		})
	})
})
