package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/Jarvl/sticker-telegram-bot/internal/callback"
	"github.com/Jarvl/sticker-telegram-bot/internal/emoji"
	"github.com/Jarvl/sticker-telegram-bot/internal/media"
	"github.com/Jarvl/sticker-telegram-bot/internal/submission"
)

const welcomeText = "🐐 Hello friends.\n\n" +
	"To add an image or animation to a sticker pack:\n" +
	"1. Reply to it with the command '/sticker' (or send it to me directly)\n" +
	"2. Send an emoji for the sticker\n" +
	"3. Select which sticker pack to add it to\n" +
	"4. The media will be added to your chosen pack\n\n" +
	"Send /cancel at any point to start over."

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil || !b.cfg.ChatAllowed(msg.Chat.ID) {
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			b.reply(msg.Chat.ID, welcomeText)
		case "sticker":
			b.handleStickerCommand(msg)
		case "cancel":
			b.handleCancel(msg)
		}
		return
	}

	if ref := extractMedia(msg); ref != nil {
		if bareMediaAccepted(msg) {
			b.beginSubmission(msg, ref)
		}
		return
	}

	if msg.Text != "" {
		b.handleEmojiResponse(msg)
	}
}

// handleStickerCommand starts a submission from a /sticker reply to a
// media message.
func (b *Bot) handleStickerCommand(msg *tgbotapi.Message) {
	if msg.ReplyToMessage == nil {
		b.reply(msg.Chat.ID, "❌ Please reply to an image or animation with the /sticker command.")
		return
	}

	ref := extractMedia(msg.ReplyToMessage)
	if ref == nil {
		b.reply(msg.Chat.ID, "❌ The message you replied to doesn't contain an image or animation. Please reply to one.")
		return
	}

	b.beginSubmission(msg, ref)
}

// beginSubmission creates (or replaces) the user's pending submission
// and prompts for the emoji tag.
func (b *Bot) beginSubmission(msg *tgbotapi.Message, ref *mediaRef) {
	pending := &submission.Pending{
		OwnerID:         msg.From.ID,
		ChatID:          msg.Chat.ID,
		MessageID:       msg.MessageID,
		FileID:          ref.fileID,
		Kind:            ref.kind,
		DurationSeconds: ref.durationSeconds,
	}
	b.manager.Begin(pending)

	b.reply(msg.Chat.ID, "📸 Great! Now just reply to this message with a single emoji for this sticker, like 🗿, 🔫, or 💩.")
}

// handleEmojiResponse validates the emoji tag while a submission is in
// the awaiting-emoji stage. Text arriving in any other state is ignored.
func (b *Bot) handleEmojiResponse(msg *tgbotapi.Message) {
	userID := msg.From.ID

	pending, ok := b.manager.Get(userID)
	if !ok || pending.Stage != submission.StageAwaitingEmoji {
		return
	}

	tag := strings.TrimSpace(msg.Text)
	if !emoji.IsSingleEmoji(tag) {
		b.reply(msg.Chat.ID, "❌ Please send just a single emoji (like 😄, 🎉, or 🚀)")
		return
	}

	if _, err := b.manager.ConfirmEmoji(userID, tag); err != nil {
		// The submission was replaced or cancelled between Get and
		// Confirm; treat like any other out-of-state event.
		return
	}

	b.sendPackKeyboard(msg.Chat.ID, userID, tag)
}

// sendPackKeyboard offers the configured packs as inline buttons, each
// carrying a token bound to the submitting user.
func (b *Bot) sendPackKeyboard(chatID, userID int64, tag string) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, pack := range b.cfg.StickerPacks {
		token, err := callback.Encode(pack, userID)
		if err != nil {
			log.Warn().Err(err).Str("pack", pack).Msg("Pack name cannot be offered as a button")
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(pack, token),
		))
	}

	reply := tgbotapi.NewMessage(chatID, fmt.Sprintf("📦 Choose a sticker pack to add this media with emoji %s:", tag))
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(reply)
}

func (b *Bot) handleCancel(msg *tgbotapi.Message) {
	if b.manager.Cancel(msg.From.ID) {
		b.reply(msg.Chat.ID, "🚫 Submission cancelled.")
	}
}

// handleCallback processes a pack-selection button press: validate the
// token against the presser, claim the pending submission, and run the
// gateway. The pending entry is removed before the blocking work starts,
// so a second press finds nothing and makes no remote call.
func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	// Answer immediately to stop the client's loading animation.
	b.request(tgbotapi.NewCallback(cq.ID, ""))

	if cq.Message == nil || cq.From == nil || !callback.Is(cq.Data) {
		return
	}
	chatID := cq.Message.Chat.ID
	if !b.cfg.ChatAllowed(chatID) {
		return
	}

	packTitle, issuedTo, err := callback.Decode(cq.Data)
	if err != nil {
		log.Warn().Str("data", cq.Data).Msg("Dropping malformed selection token")
		return
	}
	if issuedTo != cq.From.ID {
		// Forged or replayed token from another account. Dropped without
		// a response so probes learn nothing.
		log.Warn().
			Int64("issued_to", issuedTo).
			Int64("pressed_by", cq.From.ID).
			Msg("Dropping selection token pressed by a different user")
		return
	}

	if !b.cfg.PackInCatalog(packTitle) {
		b.editMessage(chatID, cq.Message.MessageID, "❌ Invalid sticker pack selected.")
		return
	}

	pending, err := b.manager.TakeForCommit(cq.From.ID)
	if err != nil {
		// Absent entry (already committed, cancelled, or replaced) or a
		// press ahead of the emoji stage; either way, not this state's
		// expected input.
		log.Debug().Err(err).Int64("user_id", cq.From.ID).Msg("Ignoring pack selection")
		return
	}

	location, err := b.gateway.Submit(context.Background(), pending, packTitle)
	if err != nil {
		b.editMessage(chatID, cq.Message.MessageID, failureText(err))
		return
	}

	b.editMessage(chatID, cq.Message.MessageID,
		fmt.Sprintf("✅ Media successfully added to sticker pack: %s. Sticker pack can be accessed at: %s", packTitle, location))
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	b.send(tgbotapi.NewEditMessageText(chatID, messageID, text))
}

// failureText maps gateway errors to user-facing failure reasons.
func failureText(err error) string {
	var sizeErr *media.SizeLimitError
	switch {
	case errors.As(err, &sizeErr):
		return fmt.Sprintf("❌ The converted animation is too large (%d KB over the 256 KB limit). Try a shorter or lower-quality clip.",
			(sizeErr.Size-media.MaxClipBytes+1023)/1024)
	case errors.Is(err, media.ErrDecode):
		return "❌ That media could not be decoded. Please submit a valid image or animation."
	default:
		return fmt.Sprintf("❌ Failed to add media to sticker pack: %v", err)
	}
}

// bareMediaAccepted reports whether a media message without the
// /sticker command may start a submission. Only direct messages
// qualify; in a group every posted photo would otherwise trigger the
// emoji prompt, and group submissions go through a /sticker reply.
func bareMediaAccepted(msg *tgbotapi.Message) bool {
	return msg.Chat != nil && msg.Chat.IsPrivate()
}

// mediaRef is a classified media attachment extracted from a message.
type mediaRef struct {
	fileID          string
	kind            submission.MediaKind
	durationSeconds float64
}

// extractMedia classifies a message's attachment, or returns nil when
// the message carries no usable media. Photos use the highest-quality
// size; documents must declare an image MIME type; animations and
// videos carry the platform's declared duration.
func extractMedia(msg *tgbotapi.Message) *mediaRef {
	switch {
	case len(msg.Photo) > 0:
		photo := msg.Photo[len(msg.Photo)-1]
		return &mediaRef{fileID: photo.FileID, kind: submission.KindImage}

	case msg.Animation != nil:
		return &mediaRef{
			fileID:          msg.Animation.FileID,
			kind:            submission.KindAnimation,
			durationSeconds: float64(msg.Animation.Duration),
		}

	case msg.Video != nil:
		return &mediaRef{
			fileID:          msg.Video.FileID,
			kind:            submission.KindAnimation,
			durationSeconds: float64(msg.Video.Duration),
		}

	case msg.Document != nil:
		mime := msg.Document.MimeType
		switch {
		case mime == "image/gif":
			return &mediaRef{fileID: msg.Document.FileID, kind: submission.KindAnimation}
		case strings.HasPrefix(mime, "image/"):
			return &mediaRef{fileID: msg.Document.FileID, kind: submission.KindImage}
		case strings.HasPrefix(mime, "video/"):
			return &mediaRef{fileID: msg.Document.FileID, kind: submission.KindAnimation}
		}
	}
	return nil
}
