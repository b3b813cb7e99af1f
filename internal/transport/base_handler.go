package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/pkg/logger"
)

// exposeStack controls whether error responses carry a stack trace.
// Enabled outside production only.
var exposeStack bool

func SetExposeStack(enabled bool) {
	exposeStack = enabled
}

// Pagination is the page descriptor attached to list responses.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// Envelope is the uniform response shape:
// {success, data?, message?, pagination?} and, on errors outside
// production, a stack field.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Stack      string      `json:"stack,omitempty"`
}

// BaseHandler provides common functionality for HTTP handlers.
type BaseHandler struct {
	Logger *slog.Logger
}

func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

func (h *BaseHandler) writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteSuccess writes {success:true, data}.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	h.writeEnvelope(w, status, Envelope{Success: true, Data: data})
}

// WriteMessage writes {success:true, message}.
func (h *BaseHandler) WriteMessage(w http.ResponseWriter, status int, message string) {
	h.writeEnvelope(w, status, Envelope{Success: true, Message: message})
}

// WritePage writes a list response with its pagination descriptor.
func (h *BaseHandler) WritePage(w http.ResponseWriter, data interface{}, p Pagination) {
	h.writeEnvelope(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

// WriteError writes {success:false, message} with the given status.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)

	env := Envelope{Success: false, Message: message}
	if exposeStack {
		env.Stack = string(debug.Stack())
	}
	h.writeEnvelope(w, status, env)
}

// HandleServiceError translates a domain error into the response envelope.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteError(w, appErr.StatusCode, appErr.Message)
		return
	}
	h.Logger.Error("unhandled service error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "Internal server error")
}

// ExtractTokenFromHeader extracts the Bearer token from the Authorization
// header, or "" when absent or malformed.
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
