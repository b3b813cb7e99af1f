package visitor

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
	Create(ctx context.Context, actor auth.Identity, dto CreateVisitorDTO) (*Visitor, error)
	GetByID(ctx context.Context, id int64) (*Visitor, error)
	List(ctx context.Context, q ListQuery) ([]*Visitor, int64, error)
	Update(ctx context.Context, actor auth.Identity, id int64, dto UpdateVisitorDTO) (*Visitor, error)
	Approve(ctx context.Context, actor auth.Identity, id int64) (*Visitor, error)
	CheckIn(ctx context.Context, actor auth.Identity, id int64, dto CheckInDTO) (*Visitor, error)
	CheckOut(ctx context.Context, actor auth.Identity, id int64) (*Visitor, error)
	Cancel(ctx context.Context, actor auth.Identity, id int64) (*Visitor, error)
}

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

// CreateVisitor godoc
// @Summary Register a visit
// @Tags visitors
// @Accept json
// @Success 201 {object} transport.Envelope
// @Router /api/visitors [post]
func (h *Handler) CreateVisitor(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var dto CreateVisitorDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, internalerrors.NewValidationError("Invalid request body", internalerrors.ErrCodeValidationFailed))
		return
	}
	v, err := h.service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, v)
}

// GetVisitors godoc
// @Summary List visits with filters and pagination
// @Tags visitors
// @Success 200 {object} transport.Envelope
// @Router /api/visitors [get]
func (h *Handler) GetVisitors(w http.ResponseWriter, r *http.Request) {
	q, appErr := ParseListQuery(r.URL.Query())
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}
	visitors, total, err := h.service.List(r.Context(), q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	h.WritePage(w, visitors, transport.Pagination{
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
	})
}

// GetVisitorByID godoc
// @Summary Get a visit by id
// @Tags visitors
// @Param id path int true "Visitor id"
// @Success 200 {object} transport.Envelope
// @Router /api/visitors/{id} [get]
func (h *Handler) GetVisitorByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.visitorID(w, r)
	if !ok {
		return
	}
	v, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, v)
}

// UpdateVisitor godoc
// @Summary Edit visit details
// @Tags visitors
// @Param id path int true "Visitor id"
// @Success 200 {object} transport.Envelope
// @Router /api/visitors/{id} [patch]
func (h *Handler) UpdateVisitor(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.visitorID(w, r)
	if !ok {
		return
	}
	var dto UpdateVisitorDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, internalerrors.NewValidationError("Invalid request body", internalerrors.ErrCodeValidationFailed))
		return
	}
	v, err := h.service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, v)
}

// ApproveVisitor godoc
// @Summary Approve a scheduled visit as its host
// @Tags visitors
// @Param id path int true "Visitor id"
// @Success 200 {object} transport.Envelope
// @Router /api/visitors/{id}/approve [post]
func (h *Handler) ApproveVisitor(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.visitorID(w, r)
	if !ok {
		return
	}
	v, err := h.service.Approve(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, v)
}

// CheckInVisitor godoc
// @Summary Check a visitor in at a gate
// @Tags visitors
// @Param id path int true "Visitor id"
// @Success 200 {object} transport.Envelope
// @Router /api/visitors/{id}/check-in [post]
func (h *Handler) CheckInVisitor(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.visitorID(w, r)
	if !ok {
		return
	}
	var dto CheckInDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, internalerrors.NewValidationError("Invalid request body", internalerrors.ErrCodeValidationFailed))
		return
	}
	v, err := h.service.CheckIn(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, v)
}

// CheckOutVisitor godoc
// @Summary Check a visitor out
// @Tags visitors
// @Param id path int true "Visitor id"
// @Success 200 {object} transport.Envelope
// @Router /api/visitors/{id}/check-out [post]
func (h *Handler) CheckOutVisitor(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.visitorID(w, r)
	if !ok {
		return
	}
	v, err := h.service.CheckOut(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, v)
}

// CancelVisitor godoc
// @Summary Cancel a visit
// @Tags visitors
// @Param id path int true "Visitor id"
// @Success 200 {object} transport.Envelope
// @Router /api/visitors/{id}/cancel [post]
func (h *Handler) CancelVisitor(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.visitorID(w, r)
	if !ok {
		return
	}
	v, err := h.service.Cancel(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, v)
}

func (h *Handler) visitorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.HandleServiceError(w, internalerrors.NewValidationError("Invalid visitor id", internalerrors.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internalerrors.ErrMissingToken)
		return auth.Identity{}, false
	}
	return identity, true
}
