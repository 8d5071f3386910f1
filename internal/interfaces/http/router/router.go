// Package router assembles the gin engine for health checks and the webhook.
package router

import (
	"net/http"

	"github.com/compmath/schedule-bot/internal/infrastructure/logger"
	"github.com/compmath/schedule-bot/internal/interfaces/http/handler"
	"github.com/compmath/schedule-bot/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Health check paths
const (
	HealthPath = "/health"
	ReadyPath  = "/ready"
)

// Config holds what the engine serves
type Config struct {
	Logger *zap.Logger
	// Meter enables request metrics when set
	Meter metric.Meter
	// TracerProvider enables request spans when set; health checks are not traced
	TracerProvider trace.TracerProvider
	ServiceName    string
	System         *handler.SystemHandler
	// Webhook receives Telegram updates at WebhookPath; nil leaves the route out
	Webhook      http.Handler
	WebhookPath  string
	MaxBodyBytes int64
}

// New creates the gin engine with tracing, logging, recovery and metrics middleware
func New(cfg Config) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if cfg.TracerProvider != nil {
		engine.Use(middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			TracerProvider: cfg.TracerProvider,
			SkipPaths:      []string{HealthPath, ReadyPath},
		})...)
	}
	engine.Use(
		logger.GinMiddleware(log, HealthPath, ReadyPath),
		logger.Recovery(log),
		middleware.HTTPMetrics(cfg.Meter),
	)

	if cfg.System != nil {
		engine.GET(HealthPath, cfg.System.Health)
		engine.GET(ReadyPath, cfg.System.Ready)
	}

	if cfg.Webhook != nil && cfg.WebhookPath != "" {
		limit := cfg.MaxBodyBytes
		if limit <= 0 {
			limit = middleware.DefaultWebhookBodyLimit
		}
		engine.POST(cfg.WebhookPath, middleware.BodyLimit(limit), gin.WrapH(cfg.Webhook))
	}

	return engine
}
