package handlers

import (
	"net/http"
	"time"

	"github.com/ramonehamilton/matchups/internal/api/response"
	"github.com/ramonehamilton/matchups/internal/version"
)

// SystemHandler serves health and metrics.
type SystemHandler struct {
	service MatchupService
	started time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(service MatchupService) *SystemHandler {
	return &SystemHandler{service: service, started: time.Now()}
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Loaded  bool   `json:"loaded"`
	Uptime  string `json:"uptime"`
}

// Health reports liveness. It never fails once the server is up.
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: version.Service,
		Version: version.GetVersion(),
		Loaded:  h.service.Loaded(),
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

// GetMetrics returns the recompute metrics snapshot.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.service.Metrics())
}
