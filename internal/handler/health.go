package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vibecircles.web/internal/health"
)

// HealthChecker probes backing services
type HealthChecker interface {
	Check(ctx context.Context) *health.Status
}

// HealthResponse body of GET /health
type HealthResponse struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message"`
	Timestamp   string         `json:"timestamp"`
	Environment string         `json:"environment"`
	Data        *health.Status `json:"data"`
}

// HealthHandler liveness endpoint
type HealthHandler struct {
	checker     HealthChecker
	environment string
	now         func() time.Time
}

// NewHealthHandler creates the handler; environment is reported verbatim
func NewHealthHandler(checker HealthChecker, environment string) *HealthHandler {
	return &HealthHandler{
		checker:     checker,
		environment: environment,
		now:         time.Now,
	}
}

// Health godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.checker.Check(c.Request.Context())

	resp := HealthResponse{
		Success:     true,
		Message:     "VibeCircles API is running",
		Timestamp:   h.now().UTC().Format(time.RFC3339Nano),
		Environment: h.environment,
		Data:        status,
	}
	code := http.StatusOK

	if !status.Healthy() {
		resp.Success = false
		resp.Message = "VibeCircles API is degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, resp)
}
