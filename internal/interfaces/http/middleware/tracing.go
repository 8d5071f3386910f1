package middleware

import (
	"net/http"

	"github.com/compmath/schedule-bot/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength bounds the request id copied onto a span
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	// TracerProvider defaults to the global provider
	TracerProvider trace.TracerProvider
	// SkipPaths are served without a span
	SkipPaths []string
}

// Tracing returns otelgin followed by a handler that tags the span with the
// request id and marks 5xx responses as errors. Both run before the rest of the chain.
func Tracing(cfg TracingConfig) gin.HandlersChain {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	opts := []otelgin.Option{
		otelgin.WithFilter(func(r *http.Request) bool {
			_, skipped := skip[r.URL.Path]
			return !skipped
		}),
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}

	return gin.HandlersChain{otelgin.Middleware(cfg.ServiceName, opts...), annotate}
}

// annotate runs inside the otelgin span, so the span is still open after Next
func annotate(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	c.Next()

	if !span.IsRecording() {
		return
	}
	if id := c.Writer.Header().Get(logger.RequestIDHeader); id != "" && len(id) <= MaxRequestIDLength {
		span.SetAttributes(attribute.String(logger.FieldRequestID, id))
	}
	if status := c.Writer.Status(); status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
