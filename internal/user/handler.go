package user

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/auth"
	"github.com/gatehouse/visitor-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, q ListQuery) ([]*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, id int64, dto UpdateUserDTO) (*User, error)
	Delete(ctx context.Context, id int64) error
	SearchEmployees(ctx context.Context, query string) ([]*EmployeeRef, error)
}

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

// GetUsers godoc
// @Summary List users
// @Tags users
// @Param role query string false "Filter by role"
// @Param search query string false "Match against name or email"
// @Success 200 {object} transport.Envelope
// @Router /api/users [get]
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		Role:   auth.Role(r.URL.Query().Get("role")),
		Search: r.URL.Query().Get("search"),
	}
	users, err := h.service.List(r.Context(), q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, users)
}

// GetUserByID godoc
// @Summary Get a user by id
// @Tags users
// @Param id path int true "User id"
// @Success 200 {object} transport.Envelope
// @Router /api/users/{id} [get]
func (h *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	u, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, u)
}

// UpdateUser godoc
// @Summary Update a user
// @Tags users
// @Param id path int true "User id"
// @Success 200 {object} transport.Envelope
// @Router /api/users/{id} [patch]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, internalerrors.NewValidationError("Invalid request body", internalerrors.ErrCodeValidationFailed))
		return
	}
	u, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, u)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Param id path int true "User id"
// @Success 200 {object} transport.Envelope
// @Router /api/users/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "User deleted successfully")
}

// SearchEmployees godoc
// @Summary Search active employees
// @Tags users
// @Param q query string false "Name or email fragment"
// @Success 200 {object} transport.Envelope
// @Router /api/users/search/employees [get]
func (h *Handler) SearchEmployees(w http.ResponseWriter, r *http.Request) {
	refs, err := h.service.SearchEmployees(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, refs)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.HandleServiceError(w, internalerrors.NewValidationError("Invalid user id", internalerrors.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}
