package notification

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/auth"
	"github.com/gatehouse/visitor-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, userID int64, unreadOnly bool) ([]*Notification, int64, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

// feedResponse pairs the notification list with its unread counter.
type feedResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int64           `json:"unreadCount"`
}

// GetNotifications godoc
// @Summary List the caller's notifications
// @Tags notifications
// @Param unreadOnly query bool false "Return unread notifications only"
// @Success 200 {object} transport.Envelope
// @Router /api/notifications [get]
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internalerrors.ErrMissingToken)
		return
	}
	unreadOnly := r.URL.Query().Get("unreadOnly") == "true"

	items, unread, err := h.service.List(r.Context(), identity.ID, unreadOnly)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, feedResponse{Notifications: items, UnreadCount: unread})
}

// MarkNotificationRead godoc
// @Summary Mark one notification as read
// @Tags notifications
// @Param id path int true "Notification id"
// @Success 200 {object} transport.Envelope
// @Router /api/notifications/{id}/read [patch]
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internalerrors.ErrMissingToken)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.HandleServiceError(w, internalerrors.NewValidationError("Invalid notification id", internalerrors.ErrCodeValidationFailed))
		return
	}
	if err := h.service.MarkRead(r.Context(), identity.ID, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Notification marked as read")
}

// MarkAllNotificationsRead godoc
// @Summary Mark all of the caller's notifications as read
// @Tags notifications
// @Success 200 {object} transport.Envelope
// @Router /api/notifications/mark-all-read [post]
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internalerrors.ErrMissingToken)
		return
	}
	if err := h.service.MarkAllRead(r.Context(), identity.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "All notifications marked as read")
}
