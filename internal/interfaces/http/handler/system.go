// Package handler serves the bot's operational HTTP endpoints.
package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/compmath/schedule-bot/internal/infrastructure/logger"
	"github.com/compmath/schedule-bot/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck is one dependency checked by /ready
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// SystemHandler serves the liveness and readiness endpoints
type SystemHandler struct {
	name      string
	version   string
	startTime time.Time
	checks    []ReadinessCheck
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, checks ...ReadinessCheck) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
	}
}

// HealthResponse is the body of a successful health check
type HealthResponse struct {
	Status    string            `json:"status"`
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health reports that the process is up
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(h.status(nil)))
}

// Ready runs every readiness check and answers 503 on the first failure
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			logger.FromContext(c.Request.Context()).Warn("Readiness check failed",
				zap.String("check", check.Name), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(dto.CodeNotReady, check.Name+": "+err.Error()))
			return
		}
		results[check.Name] = "ok"
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(h.status(results)))
}

func (h *SystemHandler) status(checks map[string]string) HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
	}
}
