// Package config loads bot configuration from environment variables.
// A .env file in the working directory is loaded first if present, so
// local development matches the deployed environment-variable contract.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Run modes for the update transport.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config holds all runtime configuration for the sticker bot.
type Config struct {
	// Telegram credentials
	BotToken    string
	BotUsername string

	// StickerPacks is the catalog of collection display titles offered to
	// users. Read-only after Load; order is preserved for keyboard layout.
	StickerPacks []string

	// PackOwnerUserID is the Telegram user that owns every sticker set
	// the bot creates.
	PackOwnerUserID int64

	// Mode selects the update transport: polling (default) or webhook.
	Mode string

	// Webhook listener settings (webhook mode only).
	APIHost            string
	APIPort            int
	WebhookURL         string
	WebhookSecretToken string

	// AllowedChatIDs restricts which chats the bot reacts to.
	// nil means every chat is allowed.
	AllowedChatIDs []int64
}

// Load reads configuration from the environment. It does not validate;
// call Validate afterwards so all problems are reported together.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:           os.Getenv("TELEGRAM_BOT_TOKEN"),
		BotUsername:        os.Getenv("TELEGRAM_BOT_USERNAME"),
		Mode:               envOr("MODE", ModePolling),
		APIHost:            envOr("API_HOST", "0.0.0.0"),
		WebhookURL:         os.Getenv("WEBHOOK_URL"),
		WebhookSecretToken: os.Getenv("WEBHOOK_SECRET_TOKEN"),
	}

	cfg.StickerPacks = splitList(os.Getenv("STICKER_PACKS"))

	if raw := os.Getenv("STICKER_PACK_OWNER_USER_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("STICKER_PACK_OWNER_USER_ID must be an integer: %w", err)
		}
		cfg.PackOwnerUserID = id
	}

	port := envOr("API_PORT", "8000")
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("API_PORT must be an integer: %w", err)
	}
	cfg.APIPort = p

	if raw := os.Getenv("ALLOWED_CHAT_IDS"); raw != "" {
		for _, part := range splitList(raw) {
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("ALLOWED_CHAT_IDS must be a comma-separated list of integers: %w", err)
			}
			cfg.AllowedChatIDs = append(cfg.AllowedChatIDs, id)
		}
	}

	return cfg, nil
}

// Validate checks the configuration for invalid or missing values.
func (c *Config) Validate() error {
	if errs := c.validate(); len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *Config) validate() []string {
	var errs []string

	if c.BotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}
	if c.BotUsername == "" {
		errs = append(errs, "TELEGRAM_BOT_USERNAME is required")
	}
	if len(c.StickerPacks) == 0 {
		errs = append(errs, "STICKER_PACKS must contain at least one pack name")
	}
	if c.PackOwnerUserID == 0 {
		errs = append(errs, "STICKER_PACK_OWNER_USER_ID is required")
	}
	if c.Mode != ModePolling && c.Mode != ModeWebhook {
		errs = append(errs, fmt.Sprintf("MODE must be %q or %q", ModePolling, ModeWebhook))
	}
	if c.APIPort < 1 || c.APIPort > 65535 {
		errs = append(errs, "API_PORT must be a valid port number")
	}
	if c.Mode == ModeWebhook && c.WebhookURL == "" {
		errs = append(errs, "WEBHOOK_URL is required in webhook mode")
	}

	return errs
}

// ChatAllowed reports whether the bot should react to events from chatID.
func (c *Config) ChatAllowed(chatID int64) bool {
	if c.AllowedChatIDs == nil {
		return true
	}
	for _, id := range c.AllowedChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// PackInCatalog reports whether title is one of the configured packs.
func (c *Config) PackInCatalog(title string) bool {
	for _, p := range c.StickerPacks {
		if p == title {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
