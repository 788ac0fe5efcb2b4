package handlers

import (
	"context"
	"net/http"

	"stock-backend/internal/health"
	"stock-backend/pkg/utils"
)

type HealthChecker interface {
	CheckReady(ctx context.Context) health.HealthStatus
	CheckDetailed(ctx context.Context, feedClients int) health.DetailedStatus
}

type HealthHandler struct {
	checker     HealthChecker
	feedClients func() int
}

// NewHealthHandler takes the stock feed client counter for the detailed report; it may be nil
func NewHealthHandler(checker HealthChecker, feedClients func() int) *HealthHandler {
	if feedClients == nil {
		feedClients = func() int { return 0 }
	}
	return &HealthHandler{checker: checker, feedClients: feedClients}
}

// BasicHealth - for Kubernetes liveness checks
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessHealth - for Kubernetes readiness checks
func (h *HealthHandler) ReadinessHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckReady(r.Context())

	code := http.StatusOK
	if status.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	utils.JSON(w, code, status)
}

// DetailedHealth - for monitoring dashboard
func (h *HealthHandler) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.checker.CheckDetailed(r.Context(), h.feedClients()))
}
