package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Jarvl/sticker-telegram-bot/internal/bot"
	"github.com/Jarvl/sticker-telegram-bot/internal/config"
	"github.com/Jarvl/sticker-telegram-bot/internal/logging"
	"github.com/Jarvl/sticker-telegram-bot/internal/media"
)

var configCheckFlag bool

// rootCmd is the main Cobra command for the sticker bot.
var rootCmd = &cobra.Command{
	Use:   "stickerbot",
	Short: "Telegram bot that adds chat media to shared sticker packs",
	Long: `Stickerbot lets chat members submit an image or short animation,
tag it with an emoji, pick a sticker pack, and have the media normalized
and appended to that pack.

Configuration comes from environment variables (a .env file is honored):
TELEGRAM_BOT_TOKEN, TELEGRAM_BOT_USERNAME, STICKER_PACKS,
STICKER_PACK_OWNER_USER_ID, and optionally MODE (polling|webhook),
WEBHOOK_URL, WEBHOOK_SECRET_TOKEN, API_HOST, API_PORT, ALLOWED_CHAT_IDS.`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().BoolVar(&configCheckFlag, "config-check", false, "Validate configuration and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Configuration is invalid")
	}
	log.Info().
		Int("packs", len(cfg.StickerPacks)).
		Str("mode", cfg.Mode).
		Msg("Configuration validated")

	if configCheckFlag {
		log.Info().Msg("Configuration check passed. Exiting.")
		return
	}

	if err := media.CheckFFmpegAvailable(); err != nil {
		log.Warn().Err(err).Msg("FFmpeg unavailable; animation submissions will fail")
	}

	b, err := bot.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start bot")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case config.ModeWebhook:
		err = b.RunWebhook(ctx)
	default:
		err = b.RunPolling(ctx)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Bot stopped with error")
	}

	log.Info().Msg("Bot stopped")
}
