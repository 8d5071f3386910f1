package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appaccess "github.com/compmath/schedule-bot/internal/application/access"
	apptimetable "github.com/compmath/schedule-bot/internal/application/timetable"
	"github.com/compmath/schedule-bot/internal/domain/timetable"
	"github.com/compmath/schedule-bot/internal/infrastructure/cache"
	"github.com/compmath/schedule-bot/internal/infrastructure/config"
	"github.com/compmath/schedule-bot/internal/infrastructure/logger"
	"github.com/compmath/schedule-bot/internal/infrastructure/persistence"
	"github.com/compmath/schedule-bot/internal/infrastructure/telemetry"
	"github.com/compmath/schedule-bot/internal/interfaces/http/handler"
	"github.com/compmath/schedule-bot/internal/interfaces/http/router"
	"github.com/compmath/schedule-bot/internal/interfaces/telegram"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting schedule bot",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("mode", cfg.Telegram.Mode),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Logs export
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logs export", zap.Error(err))
	}
	defer func() {
		if err := logsProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logs export", zap.Error(err))
		}
	}()
	if level, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		log = logsProvider.Bridge(log, level)
	}

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:           cfg.Telemetry.TracingEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracing", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Database.SlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	dbSystem := cfg.Database.Driver
	if dbSystem == persistence.DriverPostgres {
		dbSystem = "postgresql"
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         tracerProvider.IsEnabled() && cfg.Telemetry.DBTracing,
		DBSystem:        dbSystem,
		SlowQueryThresh: cfg.Database.SlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
	}

	// Authorization
	manager := appaccess.NewAuthorizationManager(
		persistence.NewGormAuthorizedUserRepository(db.DB),
		persistence.NewGormTransactionScope(db.DB),
		cache.NewAuthorizedUserCache(),
		appaccess.ManagerConfig{
			SecretCode:  cfg.Auth.SecretCode,
			Admins:      cfg.Auth.Admins,
			MaxAttempts: cfg.Auth.MaxAttempts,
		},
		log.Named("access"),
	)
	if _, err := manager.Warm(ctx); err != nil {
		log.Fatal("Failed to load authorized users", zap.Error(err))
	}

	// Timetable
	epoch, err := timetable.ParseWeekStart(cfg.Schedule.WeekStart)
	if err != nil {
		log.Fatal("Invalid week start", zap.Error(err))
	}
	schedule := apptimetable.NewService(
		persistence.NewGormScheduleRepository(db.DB),
		persistence.NewGormTeacherRepository(db.DB),
		timetable.NewWeekCalculator(epoch),
		apptimetable.WithLocation(cfg.App.Location()),
	)

	// Update de-duplication
	dedup, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := dedup.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Metrics
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down metrics", zap.Error(err))
		}
	}()

	var (
		meter      metric.Meter
		botMetrics *telemetry.BotMetrics
	)
	if meterProvider.IsEnabled() {
		meter = meterProvider.Meter("schedule-bot")
		if botMetrics, err = telemetry.NewBotMetrics(meter); err != nil {
			log.Warn("Bot metrics disabled", zap.Error(err))
		}
	}

	// Telegram
	botRouter := telegram.NewRouter(telegram.RouterConfig{
		Auth:      manager,
		Timetable: schedule,
		Dedup:     dedup,
		DedupTTL:  cfg.Telegram.DedupTTL,
		Metrics:   botMetrics,
		Tracer:    tracerProvider.Tracer("schedule-bot/telegram"),
		Logger:    log,
	})
	bot, err := telegram.NewBot(cfg.Telegram, botRouter, log)
	if err != nil {
		log.Fatal("Failed to create bot", zap.Error(err))
	}

	// HTTP: health checks, plus the webhook endpoint in webhook mode
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	checks := []handler.ReadinessCheck{{
		Name:  "database",
		Check: func(context.Context) error { return db.Ping() },
	}}
	if redisStore, ok := dedup.(*cache.RedisIdempotencyStore); ok {
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: redisStore.Ping})
	}
	routes := router.Config{
		Logger:      log,
		Meter:       meter,
		ServiceName: cfg.Telemetry.ServiceName,
		System:      handler.NewSystemHandler(cfg.App.Name, version, checks...),
	}
	if tracerProvider.IsEnabled() {
		routes.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.Telegram.Mode == config.TelegramModeWebhook {
		routes.Webhook = bot.WebhookHandler()
		routes.WebhookPath = cfg.Telegram.WebhookPath
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router.New(routes),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	if err := bot.Run(ctx); err != nil {
		log.Error("Bot stopped with error", zap.Error(err))
		stop()
	}
	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("Bot exited gracefully")
}
