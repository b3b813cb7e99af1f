package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

const readinessTimeout = 2 * time.Second

var startedAt = time.Now()

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse is the readiness payload with per-component results.
type HealthResponse struct {
	Status     string                `json:"status"`
	Timestamp  string                `json:"timestamp"`
	Uptime     string                `json:"uptime"`
	Components map[string]CheckEntry `json:"components,omitempty"`
}

type CheckEntry struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// Liveness only confirms the process is serving requests.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(startedAt).Round(time.Second).String(),
	})
}

// Readiness pings the database with a short deadline so a stuck pool
// flips the probe instead of hanging it.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	entry := CheckEntry{Status: "ok"}
	begin := time.Now()
	switch {
	case h.db == nil:
		entry.Status = "unhealthy"
		entry.Message = "database not initialized"
	default:
		if err := h.db.PingContext(ctx); err != nil {
			entry.Status = "unhealthy"
			entry.Message = err.Error()
		}
	}
	entry.DurationMs = time.Since(begin).Milliseconds()

	status, code := "ok", http.StatusOK
	if entry.Status != "ok" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	writeHealth(w, code, HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(startedAt).Round(time.Second).String(),
		Components: map[string]CheckEntry{"database": entry},
	})
}

func writeHealth(w http.ResponseWriter, code int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
