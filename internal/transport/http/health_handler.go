package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler reports liveness and readiness
type HealthHandler struct {
	service AnalyticsProvider
	started time.Time
	version string
}

// NewHealthHandler creates a health handler
func NewHealthHandler(service AnalyticsProvider, version string) *HealthHandler {
	return &HealthHandler{
		service: service,
		started: time.Now(),
		version: version,
	}
}

// Routes returns the health routes
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	r.Get("/ready", h.GetReadiness)
	return r
}

// GetHealth handles GET /api/health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
	})
}

// GetReadiness handles GET /api/health/ready. The server is ready once
// a batch has been loaded.
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	if h.service.Summarize() == nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]any{"status": "loading", "ready": false})
		return
	}
	render.JSON(w, r, map[string]any{"status": "ready", "ready": true})
}
