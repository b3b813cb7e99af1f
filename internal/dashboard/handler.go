package dashboard

import (
	"context"
	"net/http"

	"github.com/gatehouse/visitor-management/internal/transport"
	"github.com/gatehouse/visitor-management/internal/visitor"
)

type ServiceAPI interface {
	Stats(ctx context.Context) (*visitor.DayStats, error)
	CurrentVisitors(ctx context.Context) ([]*visitor.Visitor, error)
}

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

// GetStats godoc
// @Summary Today's visit counters
// @Tags dashboard
// @Success 200 {object} transport.Envelope
// @Router /api/dashboard/stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, stats)
}

// GetCurrentVisitors godoc
// @Summary Visitors currently inside the facility
// @Tags dashboard
// @Success 200 {object} transport.Envelope
// @Router /api/dashboard/current-visitors [get]
func (h *Handler) GetCurrentVisitors(w http.ResponseWriter, r *http.Request) {
	visitors, err := h.service.CurrentVisitors(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, visitors)
}
