package handler

import (
	"log/slog"
	"net/http"

	"github.com/telecomplus/contracts-backend/internal/infrastructure/redis"
	"github.com/telecomplus/contracts-backend/pkg/database"
)

// HealthHandler exposes liveness and readiness probes
type HealthHandler struct {
	db      *database.ConnectionPool
	redis   *redis.Client
	name    string
	version string
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.ConnectionPool, redisClient *redis.Client, name, version string, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, redis: redisClient, name: name, version: version, logger: logger}
}

// Root handles GET / with a small service banner
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.name, map[string]interface{}{
		"version": h.version,
		"status":  "ok",
		"endpoints": map[string]string{
			"auth":      "/api/auth",
			"contracts": "/api/contracts",
			"services":  "/api/services",
			"health":    "/healthz",
			"metrics":   "/metrics",
		},
	})
}

// Live handles GET /healthz. The process is up; nothing else is checked.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, "ok")
}

// Ready handles GET /readyz, checking the database and cache backends. Redis
// being down degrades stats to recompute, so it is reported but not fatal.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if err := h.db.Health(r.Context()); err != nil {
		h.logger.Error("readiness check failed", slog.String("component", "database"), slog.String("error", err.Error()))
		checks["database"] = "down"
		writeJSON(w, http.StatusServiceUnavailable, Envelope{
			Success: false,
			Message: "not ready",
			Data:    checks,
		})
		return
	}
	checks["database"] = "up"

	if h.redis != nil {
		if err := h.redis.Ping(r.Context()); err != nil {
			checks["redis"] = "down"
		} else {
			checks["redis"] = "up"
		}
	} else {
		checks["redis"] = "disabled"
	}

	respondData(w, http.StatusOK, "ready", checks)
}
