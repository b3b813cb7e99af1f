package audit

import (
	"context"
	"net/http"
	"strconv"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, q ListQuery) ([]*Entry, int64, error)
}

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

// GetAuditLogs godoc
// @Summary List the audit trail
// @Tags audit
// @Param action query string false "Filter by action"
// @Param entityId query int false "Filter by entity id"
// @Param userId query int false "Filter by acting user id"
// @Success 200 {object} transport.Envelope
// @Router /api/audit-logs [get]
func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := ListQuery{
		Action:     Action(values.Get("action")),
		EntityType: values.Get("entityType"),
		Page:       1,
		Limit:      20,
	}
	if raw := values.Get("entityId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.HandleServiceError(w, internalerrors.NewValidationError("Invalid entityId", internalerrors.ErrCodeValidationFailed))
			return
		}
		q.EntityID = id
	}
	if raw := values.Get("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.HandleServiceError(w, internalerrors.NewValidationError("Invalid userId", internalerrors.ErrCodeValidationFailed))
			return
		}
		q.UserID = id
	}
	if raw := values.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			q.Page = page
		}
	}
	if raw := values.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= 100 {
			q.Limit = limit
		}
	}

	entries, total, err := h.service.List(r.Context(), q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	h.WritePage(w, entries, transport.Pagination{
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
	})
}
