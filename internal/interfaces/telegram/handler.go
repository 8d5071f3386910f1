package telegram

import (
	"context"
	"strings"

	"github.com/compmath/schedule-bot/internal/infrastructure/telemetry"
)

// Request is one inbound text message, independent of the transport
type Request struct {
	UpdateID  int64
	UserID    int64
	ChatID    int64
	MessageID int
	Text      string

	// Command is the command name without the slash; empty for plain text
	Command string
	// Args is the text after the command
	Args string
}

// Reply is a handler's answer. An empty Text sends nothing.
type Reply struct {
	Text   string
	Status string
}

// Handler answers a request
type Handler func(ctx context.Context, req Request) (Reply, error)

// Middleware wraps a Handler
type Middleware func(next Handler) Handler

// Chain applies middlewares so that the first one runs outermost
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Responder delivers reply text for a request
type Responder interface {
	Reply(ctx context.Context, req Request, text string) error
}

// ParseCommand splits "/cmd@bot args" into its command and arguments.
// Text that does not start with a slash yields an empty command.
func ParseCommand(text string) (command, args string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	command, _, _ = strings.Cut(head, "@")
	return strings.ToLower(command), strings.TrimSpace(rest)
}

func text(s string) Reply {
	return Reply{Text: s, Status: telemetry.StatusOK}
}

func silent(status string) Reply {
	return Reply{Status: status}
}

// trimCode strips surrounding whitespace from a submitted code
func trimCode(s string) string {
	return strings.TrimSpace(s)
}
