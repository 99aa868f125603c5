package api

import (
	"net/http"
	"time"

	"github.com/journallm/journallm/internal/api/respond"
)

// ServiceHealth is the cached service health aggregate.
type ServiceHealth interface {
	IsHealthy() bool
	Components() map[string]bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	svc ServiceHealth
}

func NewHealthHandler(svc ServiceHealth) *HealthHandler { return &HealthHandler{svc: svc} }

// Liveness handles GET /health
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// CheckHealth handles GET /api/health
// Always returns 200; body reports healthy/unhealthy per component.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if h.svc.IsHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now().Format(time.RFC3339),
		"components": h.svc.Components(),
	})
}
