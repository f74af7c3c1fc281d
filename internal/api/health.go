package api

import (
	"net/http"
	"time"

	respond "github.com/lifelog/lifelog-server/internal/api/respond"
)

// HealthHandler handles health check endpoints
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// serviceIsHealthy is injected by run.go; until then the service reports
// unhealthy so load balancers hold traffic during startup.
var serviceIsHealthy = func() bool { return false }

func BindServiceHealth(f func() bool) { serviceIsHealthy = f }

// CheckHealth handles GET /api/health
// Always returns 200; body reports healthy/unhealthy. 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if serviceIsHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
