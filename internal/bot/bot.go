// Package bot wires the Telegram transport to the submission state
// machine and the pack submission gateway. Each inbound update is
// handled on its own goroutine; per-user serialization happens in the
// submission store, never across the blocking fetch/transcode/submit
// calls.
package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Jarvl/sticker-telegram-bot/internal/config"
	"github.com/Jarvl/sticker-telegram-bot/internal/gateway"
	"github.com/Jarvl/sticker-telegram-bot/internal/packapi"
	"github.com/Jarvl/sticker-telegram-bot/internal/submission"
	"github.com/Jarvl/sticker-telegram-bot/internal/webhook"
)

// sendRate caps outbound API calls; Telegram allows roughly 30
// messages per second across all chats.
var sendRate = rate.Limit(25)

// Bot runs the sticker submission conversation over Telegram.
type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     *config.Config
	manager *submission.Manager
	gateway *gateway.Gateway
	limiter *rate.Limiter
}

// New creates a Bot from configuration, authorizing against the
// Telegram API.
func New(cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	log.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	b := &Bot{
		api:     api,
		cfg:     cfg,
		manager: submission.NewManager(submission.NewMemoryStore()),
		limiter: rate.NewLimiter(sendRate, 5),
	}
	b.gateway = gateway.New(
		&telegramFetcher{api: api},
		packapi.New(api),
		cfg.PackOwnerUserID,
		cfg.BotUsername,
	)
	return b, nil
}

// RunPolling consumes updates over long polling until ctx is cancelled.
func (b *Bot) RunPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(u)

	log.Info().Msg("Polling for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.Dispatch(update)
		}
	}
}

// RunWebhook registers the webhook with Telegram and serves updates
// over HTTP until ctx is cancelled.
func (b *Bot) RunWebhook(ctx context.Context) error {
	wh, err := tgbotapi.NewWebhook(b.cfg.WebhookURL)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("failed to register webhook: %w", err)
	}

	handler := webhook.NewHandler(b.cfg.WebhookSecretToken, func(update tgbotapi.Update) {
		go b.Dispatch(update)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", b.cfg.APIHost, b.cfg.APIPort),
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", srv.Addr).Msg("Serving webhook updates")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webhook server failed: %w", err)
	}
	return nil
}

// Dispatch classifies one update and routes it to the matching handler.
func (b *Bot) Dispatch(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from handler panic")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(update.Message)
	}
}

// send pushes an API call through the rate limiter.
func (b *Bot) send(c tgbotapi.Chattable) {
	if err := b.limiter.Wait(context.Background()); err != nil {
		return
	}
	if _, err := b.api.Send(c); err != nil {
		log.Warn().Err(err).Msg("Failed to send message")
	}
}

// request is send for calls without a message result (callback answers).
func (b *Bot) request(c tgbotapi.Chattable) {
	if err := b.limiter.Wait(context.Background()); err != nil {
		return
	}
	if _, err := b.api.Request(c); err != nil {
		log.Warn().Err(err).Msg("Failed to send request")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// telegramFetcher resolves Telegram file ids to raw bytes via getFile
// and the file download endpoint.
type telegramFetcher struct {
	api *tgbotapi.BotAPI
}

func (f *telegramFetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	file, err := f.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	fileURL := file.Link(f.api.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}

	log.Debug().Str("file_id", fileID).Int("size", len(data)).Msg("Media fetched")

	return data, nil
}
