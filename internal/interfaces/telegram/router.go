// Package telegram routes bot commands to the application services and
// adapts the Telegram Bot API to that router.
package telegram

import (
	"context"
	"errors"
	"strconv"
	"time"

	appaccess "github.com/compmath/schedule-bot/internal/application/access"
	apptimetable "github.com/compmath/schedule-bot/internal/application/timetable"
	"github.com/compmath/schedule-bot/internal/domain/access"
	"github.com/compmath/schedule-bot/internal/domain/shared"
	"github.com/compmath/schedule-bot/internal/domain/timetable"
	"github.com/compmath/schedule-bot/internal/infrastructure/logger"
	"github.com/compmath/schedule-bot/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Command names
const (
	CmdStart         = "start"
	CmdAuth          = "auth"
	CmdHelp          = "help"
	CmdTeachers      = "teachers"
	CmdSchedule      = "schedule"
	CmdToday         = "today"
	CmdTomorrow      = "tomorrow"
	CmdWeekType      = "week_type"
	CmdResetAttempts = "reset_attempts"

	// codeSubmission labels plain-text code submissions in logs and metrics
	codeSubmission = "code"
)

// AuthorizationService is the part of the authorization manager the router uses
type AuthorizationService interface {
	Authorizer
	AdminChecker
	SubmitCode(ctx context.Context, userID int64, code string) (appaccess.SubmitResult, error)
	ResetAttempts(ctx context.Context, adminID, target int64) error
}

// TimetableService renders the schedule commands
type TimetableService interface {
	WeekSchedule(ctx context.Context) (string, error)
	DaySchedule(ctx context.Context, offsetDays int) (apptimetable.Day, error)
	CurrentWeekType() timetable.WeekType
	TeacherDirectory(ctx context.Context) (string, error)
}

// RouterConfig holds the router's collaborators
type RouterConfig struct {
	Auth          AuthorizationService
	Timetable     TimetableService
	Conversations *ConversationStore
	// Dedup suppresses re-delivered updates; nil disables it
	Dedup    shared.IdempotencyStore
	DedupTTL time.Duration
	Metrics  *telemetry.BotMetrics
	// Tracer opens one span per handled update; nil disables tracing
	Tracer trace.Tracer
	Logger *zap.Logger
}

// Router dispatches requests to command handlers
type Router struct {
	auth          AuthorizationService
	timetable     TimetableService
	conversations *ConversationStore
	dedup         shared.IdempotencyStore
	dedupTTL      time.Duration
	metrics       *telemetry.BotMetrics
	tracer        trace.Tracer
	logger        *zap.Logger
	handlers      map[string]Handler
	submit        Handler
}

// NewRouter creates a Router and registers every command
func NewRouter(cfg RouterConfig) *Router {
	r := &Router{
		auth:          cfg.Auth,
		timetable:     cfg.Timetable,
		conversations: cfg.Conversations,
		dedup:         cfg.Dedup,
		dedupTTL:      cfg.DedupTTL,
		metrics:       cfg.Metrics,
		tracer:        cfg.Tracer,
		logger:        cfg.Logger,
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer("")
	}
	if r.conversations == nil {
		r.conversations = NewConversationStore()
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.dedupTTL <= 0 {
		r.dedupTTL = shared.DefaultIdempotencyConfig().TTL
	}

	gate := Gate(r.auth)
	r.handlers = map[string]Handler{
		CmdStart:         r.handleStart,
		CmdAuth:          r.handleAuth,
		CmdHelp:          Chain(r.handleHelp, gate),
		CmdTeachers:      Chain(r.handleTeachers, gate),
		CmdSchedule:      Chain(r.handleSchedule, gate),
		CmdToday:         Chain(r.dayHandler(0), gate),
		CmdTomorrow:      Chain(r.dayHandler(1), gate),
		CmdWeekType:      Chain(r.handleWeekType, gate),
		CmdResetAttempts: Chain(r.handleResetAttempts, AdminOnly(r.auth)),
	}
	r.submit = r.handleCode
	return r
}

// Dispatch handles one request and sends the reply through resp.
// It returns an error only when the reply could not be delivered.
func (r *Router) Dispatch(ctx context.Context, req Request, resp Responder) error {
	if r.isDuplicate(ctx, req) {
		return nil
	}

	ctx, log := logger.WithUpdate(ctx, r.logger, logger.UpdateScope{
		RequestID: uuid.NewString(),
		UpdateID:  req.UpdateID,
		UserID:    req.UserID,
		ChatID:    req.ChatID,
	})

	req.Command, req.Args = ParseCommand(req.Text)
	name, h := r.route(req)
	if h == nil {
		log.Debug("Ignoring message", zap.String("command", req.Command))
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "telegram.update "+name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.Int64(logger.FieldUpdateID, req.UpdateID),
			attribute.Int64(logger.FieldUserID, req.UserID),
			telemetry.AttrCommand.String(name),
		),
	)
	defer span.End()

	start := time.Now()
	reply, err := h(ctx, req)
	if err != nil {
		log.Error("Failed to handle update", zap.String("command", name), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
		reply = Reply{Text: MsgInternalError, Status: telemetry.StatusError}
	}
	if reply.Status == "" {
		reply.Status = telemetry.StatusOK
	}
	elapsed := time.Since(start)
	r.metrics.RecordCommand(ctx, name, reply.Status, elapsed)
	span.SetAttributes(telemetry.AttrStatus.String(reply.Status))
	log.Info("Update handled",
		zap.String("command", name),
		zap.String("status", reply.Status),
		zap.Duration("latency", elapsed),
	)

	if reply.Text == "" {
		return nil
	}
	if err := resp.Reply(ctx, req, reply.Text); err != nil {
		log.Error("Failed to send reply", zap.String("command", name), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "reply failed")
		return err
	}
	return nil
}

// route picks the handler: commands first, then a pending code submission
func (r *Router) route(req Request) (string, Handler) {
	if req.Command != "" {
		return req.Command, r.handlers[req.Command]
	}
	if r.conversations.Get(req.UserID) == StateWaitingForCode {
		return codeSubmission, r.submit
	}
	return "", nil
}

func (r *Router) isDuplicate(ctx context.Context, req Request) bool {
	if r.dedup == nil || req.UpdateID == 0 {
		return false
	}
	fresh, err := r.dedup.MarkProcessed(ctx, "update:"+strconv.FormatInt(req.UpdateID, 10), r.dedupTTL)
	if err != nil {
		// handling twice is better than not at all
		r.logger.Warn("Idempotency check failed", zap.Int64(logger.FieldUpdateID, req.UpdateID), zap.Error(err))
		return false
	}
	if !fresh {
		r.logger.Info("Dropping re-delivered update", zap.Int64(logger.FieldUpdateID, req.UpdateID))
		r.metrics.RecordDuplicate(ctx)
		return true
	}
	return false
}

func (r *Router) handleStart(context.Context, Request) (Reply, error) {
	return text(MsgWelcome), nil
}

func (r *Router) handleHelp(context.Context, Request) (Reply, error) {
	return text(MsgHelp), nil
}

// handleAuth starts the code flow. Inline arguments are ignored; the code is
// always read from the next message.
func (r *Router) handleAuth(ctx context.Context, req Request) (Reply, error) {
	ok, err := r.auth.IsAuthorized(ctx, req.UserID)
	if err != nil {
		return Reply{}, err
	}
	if ok {
		r.conversations.Clear(req.UserID)
		return text(MsgAlreadyAuthorized), nil
	}
	r.conversations.Set(req.UserID, StateWaitingForCode)
	return text(MsgEnterCode), nil
}

func (r *Router) handleCode(ctx context.Context, req Request) (Reply, error) {
	ok, err := r.auth.IsAuthorized(ctx, req.UserID)
	if err != nil {
		return Reply{}, err
	}
	if ok {
		r.conversations.Clear(req.UserID)
		return text(MsgAlreadyAuthorized), nil
	}

	result, err := r.auth.SubmitCode(ctx, req.UserID, trimCode(req.Text))
	if err != nil {
		return Reply{}, err
	}
	r.metrics.RecordAuthOutcome(ctx, result.Outcome.String())

	switch result.Outcome {
	case appaccess.OutcomeAuthorized:
		r.conversations.Clear(req.UserID)
		return text(MsgAuthSuccess), nil
	case appaccess.OutcomeBlocked:
		r.conversations.Clear(req.UserID)
		return Reply{Text: MsgBlocked, Status: telemetry.StatusDenied}, nil
	default:
		return Reply{Text: MsgWrongCode, Status: telemetry.StatusDenied}, nil
	}
}

func (r *Router) handleTeachers(ctx context.Context, _ Request) (Reply, error) {
	directory, err := r.timetable.TeacherDirectory(ctx)
	if err != nil {
		return Reply{}, err
	}
	return text(directory), nil
}

func (r *Router) handleSchedule(ctx context.Context, _ Request) (Reply, error) {
	week, err := r.timetable.WeekSchedule(ctx)
	if err != nil {
		return Reply{}, err
	}
	if apptimetable.IsFreeDay(week) {
		return text(MsgEmptySchedule), nil
	}
	return text(week), nil
}

func (r *Router) dayHandler(offset int) Handler {
	header, free := MsgTodayHeader, MsgFreeToday
	if offset != 0 {
		header, free = MsgTomorrowHeader, MsgFreeTomorrow
	}
	return func(ctx context.Context, _ Request) (Reply, error) {
		day, err := r.timetable.DaySchedule(ctx, offset)
		if err != nil {
			return Reply{}, err
		}
		if day.Free {
			return text(free), nil
		}
		return text(header + day.Text), nil
	}
}

func (r *Router) handleWeekType(context.Context, Request) (Reply, error) {
	return text(MsgWeekType(r.timetable.CurrentWeekType().Label())), nil
}

// handleResetAttempts ignores a missing or non-numeric argument without replying
func (r *Router) handleResetAttempts(ctx context.Context, req Request) (Reply, error) {
	target, err := strconv.ParseInt(req.Args, 10, 64)
	if err != nil {
		return silent(telemetry.StatusOK), nil
	}

	err = r.auth.ResetAttempts(ctx, req.UserID, target)
	switch {
	case errors.Is(err, access.ErrUserNotFound):
		return text(MsgUserNotFound(target)), nil
	case errors.Is(err, access.ErrNotAdmin):
		return silent(telemetry.StatusDenied), nil
	case err != nil:
		return Reply{}, err
	}

	return text(MsgAttemptsReset(target)), nil
}
