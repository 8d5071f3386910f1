package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appaccess "github.com/compmath/schedule-bot/internal/application/access"
	apptimetable "github.com/compmath/schedule-bot/internal/application/timetable"
	"github.com/compmath/schedule-bot/internal/domain/access"
	"github.com/compmath/schedule-bot/internal/domain/timetable"
	"github.com/compmath/schedule-bot/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockAuthorizationService is a mock implementation of AuthorizationService
type MockAuthorizationService struct {
	mock.Mock
}

func (m *MockAuthorizationService) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorizationService) IsAdmin(userID int64) bool {
	return m.Called(userID).Bool(0)
}

func (m *MockAuthorizationService) SubmitCode(ctx context.Context, userID int64, code string) (appaccess.SubmitResult, error) {
	args := m.Called(ctx, userID, code)
	return args.Get(0).(appaccess.SubmitResult), args.Error(1)
}

func (m *MockAuthorizationService) ResetAttempts(ctx context.Context, adminID, target int64) error {
	return m.Called(ctx, adminID, target).Error(0)
}

// MockTimetableService is a mock implementation of TimetableService
type MockTimetableService struct {
	mock.Mock
}

func (m *MockTimetableService) WeekSchedule(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTimetableService) DaySchedule(ctx context.Context, offsetDays int) (apptimetable.Day, error) {
	args := m.Called(ctx, offsetDays)
	return args.Get(0).(apptimetable.Day), args.Error(1)
}

func (m *MockTimetableService) CurrentWeekType() timetable.WeekType {
	return m.Called().Get(0).(timetable.WeekType)
}

func (m *MockTimetableService) TeacherDirectory(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// recorder collects replies
type recorder struct {
	mu      sync.Mutex
	replies []string
	err     error
}

func (r *recorder) Reply(_ context.Context, _ Request, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, text)
	return r.err
}

func (r *recorder) last(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.replies)
	return r.replies[len(r.replies)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.replies)
}

type routerFixture struct {
	auth   *MockAuthorizationService
	tt     *MockTimetableService
	router *Router
	resp   *recorder
	logs   *observer.ObservedLogs
	spans  *tracetest.SpanRecorder
	nextID int64
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	f := &routerFixture{
		auth:  new(MockAuthorizationService),
		tt:    new(MockTimetableService),
		resp:  &recorder{},
		logs:  logs,
		spans: tracetest.NewSpanRecorder(),
	}
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	f.router = NewRouter(RouterConfig{
		Auth:      f.auth,
		Timetable: f.tt,
		Dedup:     store,
		DedupTTL:  time.Hour,
		Tracer:    sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(f.spans)).Tracer("test"),
		Logger:    zap.New(core),
	})
	return f
}

func (f *routerFixture) send(t *testing.T, userID int64, text string) {
	t.Helper()
	f.nextID++
	err := f.router.Dispatch(context.Background(), Request{
		UpdateID:  f.nextID,
		UserID:    userID,
		ChatID:    userID,
		MessageID: int(f.nextID),
		Text:      text,
	}, f.resp)
	require.NoError(t, err)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text, cmd, args string
	}{
		{"/start", "start", ""},
		{"/reset_attempts 42", "reset_attempts", "42"},
		{"/today@schedule_bot", "today", ""},
		{"/Help  extra words ", "help", "extra words"},
		{"hello", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		cmd, args := ParseCommand(tt.text)
		assert.Equal(t, tt.cmd, cmd, tt.text)
		assert.Equal(t, tt.args, args, tt.text)
	}
}

func TestRouter_PublicCommands(t *testing.T) {
	f := newRouterFixture(t)

	f.send(t, 1, "/start")
	assert.Equal(t, MsgWelcome, f.resp.last(t))

	f.auth.On("IsAuthorized", mock.Anything, int64(1)).Return(false, nil)
	f.send(t, 1, "/auth")
	assert.Equal(t, MsgEnterCode, f.resp.last(t))
	assert.Equal(t, StateWaitingForCode, f.router.conversations.Get(1))
}

func TestRouter_GatedCommandsRejectUnauthorized(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.On("IsAuthorized", mock.Anything, int64(5)).Return(false, nil)

	for _, cmd := range []string{"/help", "/teachers", "/schedule", "/today", "/tomorrow", "/week_type"} {
		f.send(t, 5, cmd)
		assert.Equal(t, MsgAuthRequired, f.resp.last(t), cmd)
	}
	f.tt.AssertNotCalled(t, "WeekSchedule", mock.Anything)
	f.auth.AssertNotCalled(t, "SubmitCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_GatedCommands(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.On("IsAuthorized", mock.Anything, int64(5)).Return(true, nil)

	f.send(t, 5, "/help")
	assert.Equal(t, MsgHelp, f.resp.last(t))

	f.tt.On("TeacherDirectory", mock.Anything).Return("directory", nil).Once()
	f.send(t, 5, "/teachers")
	assert.Equal(t, "directory", f.resp.last(t))

	f.tt.On("WeekSchedule", mock.Anything).Return("<b>Понеділок</b>:\nx\n\n", nil).Once()
	f.send(t, 5, "/schedule")
	assert.Equal(t, "<b>Понеділок</b>:\nx\n\n", f.resp.last(t))

	f.tt.On("WeekSchedule", mock.Anything).Return("\n\n\n\n\n\n", nil).Once()
	f.send(t, 5, "/schedule")
	assert.Equal(t, MsgEmptySchedule, f.resp.last(t))

	f.tt.On("DaySchedule", mock.Anything, 0).Return(apptimetable.Day{Text: "lesson\n"}, nil).Once()
	f.send(t, 5, "/today")
	assert.Equal(t, MsgTodayHeader+"lesson\n", f.resp.last(t))

	f.tt.On("DaySchedule", mock.Anything, 1).Return(apptimetable.Day{Free: true}, nil).Once()
	f.send(t, 5, "/tomorrow")
	assert.Equal(t, MsgFreeTomorrow, f.resp.last(t))

	f.tt.On("DaySchedule", mock.Anything, 0).Return(apptimetable.Day{Free: true}, nil).Once()
	f.send(t, 5, "/today")
	assert.Equal(t, MsgFreeToday, f.resp.last(t))

	f.tt.On("CurrentWeekType").Return(timetable.WeekTypeOdd).Once()
	f.send(t, 5, "/week_type")
	assert.Equal(t, "Зараз непарний тиждень", f.resp.last(t))
}

func TestRouter_CodeFlow(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.On("IsAuthorized", mock.Anything, int64(7)).Return(false, nil).Times(3)

	f.send(t, 7, "/auth")
	require.Equal(t, MsgEnterCode, f.resp.last(t))

	f.auth.On("SubmitCode", mock.Anything, int64(7), "bad").
		Return(appaccess.SubmitResult{Outcome: appaccess.OutcomeRejected, Attempts: 1, Remaining: 4}, nil).Once()
	f.send(t, 7, "bad")
	assert.Equal(t, MsgWrongCode, f.resp.last(t))
	assert.Equal(t, StateWaitingForCode, f.router.conversations.Get(7))

	f.auth.On("SubmitCode", mock.Anything, int64(7), "s3cret").
		Return(appaccess.SubmitResult{Outcome: appaccess.OutcomeAuthorized}, nil).Once()
	f.send(t, 7, "  s3cret \n")
	assert.Equal(t, MsgAuthSuccess, f.resp.last(t))
	assert.Equal(t, StateIdle, f.router.conversations.Get(7))

	f.auth.AssertExpectations(t)
}

func TestRouter_CodeFlowBlocked(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.On("IsAuthorized", mock.Anything, int64(8)).Return(false, nil)
	f.auth.On("SubmitCode", mock.Anything, int64(8), "x").
		Return(appaccess.SubmitResult{Outcome: appaccess.OutcomeBlocked, Attempts: 5}, nil).Once()

	f.send(t, 8, "/auth")
	f.send(t, 8, "x")
	assert.Equal(t, MsgBlocked, f.resp.last(t))
	assert.Equal(t, StateIdle, f.router.conversations.Get(8))

	// without the waiting state plain text is ignored
	before := f.resp.count()
	f.send(t, 8, "x")
	assert.Equal(t, before, f.resp.count())
	f.auth.AssertNumberOfCalls(t, "SubmitCode", 1)
}

func TestRouter_AlreadyAuthorized(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.On("IsAuthorized", mock.Anything, int64(9)).Return(true, nil)

	f.send(t, 9, "/auth")
	assert.Equal(t, MsgAlreadyAuthorized, f.resp.last(t))

	f.router.conversations.Set(9, StateWaitingForCode)
	f.send(t, 9, "s3cret")
	assert.Equal(t, MsgAlreadyAuthorized, f.resp.last(t))
	f.auth.AssertNotCalled(t, "SubmitCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_CommandsTakePrecedenceOverWaitingState(t *testing.T) {
	f := newRouterFixture(t)
	f.router.conversations.Set(3, StateWaitingForCode)

	f.send(t, 3, "/start")
	assert.Equal(t, MsgWelcome, f.resp.last(t))
	f.auth.AssertNotCalled(t, "SubmitCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_PlainTextAndUnknownCommandsAreIgnored(t *testing.T) {
	f := newRouterFixture(t)

	f.send(t, 4, "hello")
	f.send(t, 4, "/unknown")
	assert.Equal(t, 0, f.resp.count())
}

func TestRouter_ResetAttempts(t *testing.T) {
	const admin int64 = 100

	t.Run("non admin gets no reply", func(t *testing.T) {
		f := newRouterFixture(t)
		f.auth.On("IsAdmin", int64(5)).Return(false)

		f.send(t, 5, "/reset_attempts 7")
		assert.Equal(t, 0, f.resp.count())
		f.auth.AssertNotCalled(t, "ResetAttempts", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad argument is ignored", func(t *testing.T) {
		f := newRouterFixture(t)
		f.auth.On("IsAdmin", admin).Return(true)

		f.send(t, admin, "/reset_attempts")
		f.send(t, admin, "/reset_attempts abc")
		assert.Equal(t, 0, f.resp.count())
	})

	t.Run("success", func(t *testing.T) {
		f := newRouterFixture(t)
		f.auth.On("IsAdmin", admin).Return(true)
		f.auth.On("ResetAttempts", mock.Anything, admin, int64(7)).Return(nil)

		f.send(t, admin, "/reset_attempts 7")
		assert.Equal(t, MsgAttemptsReset(7), f.resp.last(t))
	})

	t.Run("unknown target", func(t *testing.T) {
		f := newRouterFixture(t)
		f.auth.On("IsAdmin", admin).Return(true)
		f.auth.On("ResetAttempts", mock.Anything, admin, int64(8)).Return(access.ErrUserNotFound)

		f.send(t, admin, "/reset_attempts 8")
		assert.Equal(t, MsgUserNotFound(8), f.resp.last(t))
	})
}

func TestRouter_StorageFailure(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.On("IsAuthorized", mock.Anything, int64(5)).Return(false, errors.New("db down"))

	f.send(t, 5, "/today")
	assert.Equal(t, MsgInternalError, f.resp.last(t))

	entries := f.logs.FilterMessage("Failed to handle update").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "today", entries[0].ContextMap()["command"])
	assert.Equal(t, int64(5), entries[0].ContextMap()["user_id"])
}

func TestRouter_Spans(t *testing.T) {
	t.Run("one span per handled update", func(t *testing.T) {
		f := newRouterFixture(t)
		f.auth.On("IsAuthorized", mock.Anything, int64(5)).Return(true, nil)
		f.tt.On("CurrentWeekType").Return(timetable.WeekTypeEven)

		f.send(t, 5, "/week_type")
		f.send(t, 5, "hello")

		ended := f.spans.Ended()
		require.Len(t, ended, 1)
		assert.Equal(t, "telegram.update week_type", ended[0].Name())
		assert.NotEqual(t, codes.Error, ended[0].Status().Code)

		attrs := map[string]any{}
		for _, kv := range ended[0].Attributes() {
			attrs[string(kv.Key)] = kv.Value.AsInterface()
		}
		assert.Equal(t, int64(5), attrs["user_id"])
		assert.Equal(t, "ok", attrs["status"])
	})

	t.Run("handler failure marks the span", func(t *testing.T) {
		f := newRouterFixture(t)
		f.auth.On("IsAuthorized", mock.Anything, int64(5)).Return(false, errors.New("db down"))

		f.send(t, 5, "/today")

		ended := f.spans.Ended()
		require.Len(t, ended, 1)
		assert.Equal(t, codes.Error, ended[0].Status().Code)
		require.NotEmpty(t, ended[0].Events())
		assert.Equal(t, "exception", ended[0].Events()[0].Name)
	})
}

func TestRouter_DropsRedeliveredUpdates(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.On("IsAuthorized", mock.Anything, int64(6)).Return(false, nil)
	f.auth.On("SubmitCode", mock.Anything, int64(6), "bad").
		Return(appaccess.SubmitResult{Outcome: appaccess.OutcomeRejected, Attempts: 1}, nil)
	f.router.conversations.Set(6, StateWaitingForCode)

	req := Request{UpdateID: 500, UserID: 6, ChatID: 6, Text: "bad"}
	require.NoError(t, f.router.Dispatch(context.Background(), req, f.resp))
	require.NoError(t, f.router.Dispatch(context.Background(), req, f.resp))

	assert.Equal(t, 1, f.resp.count())
	f.auth.AssertNumberOfCalls(t, "SubmitCode", 1)
	assert.Equal(t, 1, f.logs.FilterMessage("Dropping re-delivered update").Len())
}

func TestRouter_ReplyFailureIsReturned(t *testing.T) {
	f := newRouterFixture(t)
	f.resp.err = errors.New("network")

	err := f.router.Dispatch(context.Background(), Request{UpdateID: 1, UserID: 1, Text: "/start"}, f.resp)
	assert.Error(t, err)
}
