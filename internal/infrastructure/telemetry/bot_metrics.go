package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Command handling statuses
const (
	StatusOK     = "ok"
	StatusDenied = "denied"
	StatusError  = "error"
)

// BotMetrics records command and authorization activity of the bot.
type BotMetrics struct {
	commands        *Counter
	authOutcomes    *Counter
	duplicates      *Counter
	handlerDuration *Histogram
}

// NewBotMetrics creates the bot instruments on meter.
func NewBotMetrics(meter metric.Meter) (*BotMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewBotMetrics: meter cannot be nil")
	}

	commands, err := NewCounter(meter, "bot_commands_total", "Handled bot commands", "{command}")
	if err != nil {
		return nil, err
	}
	authOutcomes, err := NewCounter(meter, "bot_auth_submissions_total", "Secret code submissions by outcome", "{submission}")
	if err != nil {
		return nil, err
	}
	duplicates, err := NewCounter(meter, "bot_duplicate_updates_total", "Updates dropped as re-deliveries", "{update}")
	if err != nil {
		return nil, err
	}
	handlerDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "bot_handler_duration_seconds",
		Description: "Time spent handling one update",
		Unit:        "s",
		Boundaries:  HandlerDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &BotMetrics{
		commands:        commands,
		authOutcomes:    authOutcomes,
		duplicates:      duplicates,
		handlerDuration: handlerDuration,
	}, nil
}

// RecordCommand counts a handled command and its latency
func (m *BotMetrics) RecordCommand(ctx context.Context, command, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.commands.Inc(ctx, AttrCommand.String(command), AttrStatus.String(status))
	m.handlerDuration.RecordDuration(ctx, elapsed, AttrCommand.String(command))
}

// RecordAuthOutcome counts one code submission
func (m *BotMetrics) RecordAuthOutcome(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.authOutcomes.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordDuplicate counts a dropped re-delivered update
func (m *BotMetrics) RecordDuplicate(ctx context.Context) {
	if m == nil {
		return
	}
	m.duplicates.Inc(ctx)
}
