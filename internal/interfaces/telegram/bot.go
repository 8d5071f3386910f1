package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/compmath/schedule-bot/internal/infrastructure/config"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const pollTimeout = time.Minute

// Bot connects a Router to the Telegram Bot API
type Bot struct {
	api    *bot.Bot
	router *Router
	cfg    config.TelegramConfig
	logger *zap.Logger
}

// NewBot creates the API client. Updates are handed to router in the order received.
func NewBot(cfg config.TelegramConfig, router *Router, logger *zap.Logger) (*Bot, error) {
	b := &Bot{router: router, cfg: cfg, logger: logger}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.handleUpdate),
		bot.WithErrorsHandler(func(err error) {
			logger.Error("Telegram API error", zap.Error(err))
		}),
	}
	if cfg.WebhookSecret != "" {
		opts = append(opts, bot.WithWebhookSecretToken(cfg.WebhookSecret))
	}

	client, err := httpClient(cfg.ProxyURL)
	if err != nil {
		return nil, err
	}
	if client != nil {
		opts = append(opts, bot.WithHTTPClient(pollTimeout, client))
	}

	api, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	b.api = api
	return b, nil
}

// httpClient returns a client routed through proxyURL, or nil for the default client
func httpClient(proxyURL string) (*http.Client, error) {
	if proxyURL == "" {
		return nil, nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url: %w", err)
	}
	return &http.Client{
		Timeout:   pollTimeout + 10*time.Second,
		Transport: &http.Transport{Proxy: http.ProxyURL(u)},
	}, nil
}

// Run receives updates until ctx is done: long polling, or the webhook
// queue fed by WebhookHandler.
func (b *Bot) Run(ctx context.Context) error {
	if b.cfg.Mode == config.TelegramModeWebhook {
		ok, err := b.api.SetWebhook(ctx, &bot.SetWebhookParams{
			URL:         b.cfg.WebhookURL,
			SecretToken: b.cfg.WebhookSecret,
		})
		if err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}
		if !ok {
			return fmt.Errorf("telegram refused webhook %s", b.cfg.WebhookURL)
		}
		b.logger.Info("Webhook registered", zap.String("url", b.cfg.WebhookURL))
		b.api.StartWebhook(ctx)
		return nil
	}

	if _, err := b.api.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		b.logger.Warn("Failed to delete webhook before polling", zap.Error(err))
	}
	b.logger.Info("Polling for updates")
	b.api.Start(ctx)
	return nil
}

// WebhookHandler is the HTTP endpoint Telegram posts updates to
func (b *Bot) WebhookHandler() http.HandlerFunc {
	return b.api.WebhookHandler()
}

func (b *Bot) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	req, ok := requestFromUpdate(update)
	if !ok {
		return
	}
	_ = b.router.Dispatch(ctx, req, b)
}

// requestFromUpdate extracts a text message from update
func requestFromUpdate(update *models.Update) (Request, bool) {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return Request{}, false
	}
	msg := update.Message
	return Request{
		UpdateID:  update.ID,
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      msg.Text,
	}, true
}

// Reply answers req in its chat as an HTML reply without link previews
func (b *Bot) Reply(ctx context.Context, req Request, text string) error {
	_, err := b.api.SendMessage(ctx, sendParams(req, text))
	return err
}

func sendParams(req Request, text string) *bot.SendMessageParams {
	disablePreview := true
	params := &bot.SendMessageParams{
		ChatID:             req.ChatID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: &disablePreview},
	}
	if req.MessageID != 0 {
		params.ReplyParameters = &models.ReplyParameters{
			MessageID:                req.MessageID,
			AllowSendingWithoutReply: true,
		}
	}
	return params
}
