package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/dda/internal/middleware"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves /v1/glb/health.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler returns a HealthHandler. db may be nil, in which case only
// liveness is reported.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Full reports "up" when the database answers a ping, "down" with 503 otherwise.
// GET /v1/glb/health/full
func (h *HealthHandler) Full(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()

		if err := h.db.PingContext(pingCtx); err != nil {
			slog.ErrorContext(ctx, "reporting status DOWN for health check", slog.String("error", err.Error()))
			middleware.WriteJSON(w, http.StatusServiceUnavailable, healthDto{Status: "down"})
			return
		}
	}

	slog.DebugContext(ctx, "reporting status UP for health check")
	middleware.WriteJSON(w, http.StatusOK, healthDto{Status: "up"})
}
