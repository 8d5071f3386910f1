package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled bool
	// DBSystem is reported as db.system, e.g. "sqlite" or "postgresql"
	DBSystem string
	// WithQueryVariables puts bound values into db.statement; user ids only, but off by default
	WithQueryVariables bool
	SlowQueryThresh    time.Duration
	// TracerProvider defaults to the global provider
	TracerProvider trace.TracerProvider
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin plus callbacks that mark failed
// and slow statements on their span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if !cfg.WithQueryVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		annotateSpan(tx, cfg.SlowQueryThresh)
	}

	cb := db.Callback()
	hooks := []struct {
		callback interface {
			Register(name string, fn func(*gorm.DB)) error
		}
		fn   func(*gorm.DB)
		name string
	}{
		{cb.Create().Before("gorm:create"), before, "before_create"},
		{cb.Query().Before("gorm:query"), before, "before_query"},
		{cb.Update().Before("gorm:update"), before, "before_update"},
		{cb.Delete().Before("gorm:delete"), before, "before_delete"},
		{cb.Row().Before("gorm:row"), before, "before_row"},
		{cb.Raw().Before("gorm:raw"), before, "before_raw"},
		// otelgorm ends its span in otel:after:*; annotate while it is still open
		{cb.Create().After("gorm:create").Before("otel:after:create"), after, "after_create"},
		{cb.Query().After("gorm:query").Before("otel:after:query"), after, "after_query"},
		{cb.Update().After("gorm:update").Before("otel:after:update"), after, "after_update"},
		{cb.Delete().After("gorm:delete").Before("otel:after:delete"), after, "after_delete"},
		{cb.Row().After("gorm:row").Before("otel:after:row"), after, "after_row"},
		{cb.Raw().After("gorm:raw").Before("otel:after:raw"), after, "after_raw"},
	}
	for _, h := range hooks {
		if err := h.callback.Register("schedule:trace_"+h.name, h.fn); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

// annotateSpan records the outcome of a statement on the current span.
// A missing record is an answer, not a failure.
func annotateSpan(tx *gorm.DB, slowThresh time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}

	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok || slowThresh <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > slowThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
