// Package packapi wraps Telegram's sticker-set management endpoints.
//
// The typed request configs shipped with the bot API library predate
// video stickers and the Bot API 6.6 input_sticker format, so the
// client issues the createNewStickerSet and addStickerToSet calls as
// raw multipart requests with attach:// file references.
package packapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Sticker formats accepted by the platform.
const (
	FormatStatic = "static"
	FormatVideo  = "video"
)

// ErrAlreadyExists reports that a sticker set with the requested name
// already exists. The gateway branches on it to fall back from
// optimistic create to append.
var ErrAlreadyExists = errors.New("sticker set already exists")

// Item is one sticker to upload: normalized media bytes, the declared
// format, and the emoji tag.
type Item struct {
	Data   []byte
	Format string
	Emoji  string
}

// Client manages sticker sets through the Telegram Bot API.
type Client interface {
	// CreateSet creates a sticker set containing exactly item. Returns
	// ErrAlreadyExists when the name is taken.
	CreateSet(ctx context.Context, ownerID int64, name, title string, item Item) error

	// AddToSet appends item to an existing sticker set.
	AddToSet(ctx context.Context, ownerID int64, name string, item Item) error
}

// inputSticker is the JSON wire shape of the input_sticker parameter.
type inputSticker struct {
	Sticker   string   `json:"sticker"`
	Format    string   `json:"format"`
	EmojiList []string `json:"emoji_list"`
}

type client struct {
	api *tgbotapi.BotAPI
}

// New creates a Client over an authorized bot API session.
func New(api *tgbotapi.BotAPI) Client {
	return &client{api: api}
}

func (c *client) CreateSet(ctx context.Context, ownerID int64, name, title string, item Item) error {
	stickers, err := json.Marshal([]inputSticker{stickerPayload(item)})
	if err != nil {
		return fmt.Errorf("failed to encode input sticker: %w", err)
	}

	params := tgbotapi.Params{
		"user_id":  strconv.FormatInt(ownerID, 10),
		"name":     name,
		"title":    title,
		"stickers": string(stickers),
	}

	log.Debug().Str("name", name).Str("format", item.Format).Msg("Creating sticker set")

	_, err = c.api.UploadFiles("createNewStickerSet", params, []tgbotapi.RequestFile{{
		Name: attachName,
		Data: tgbotapi.FileBytes{Name: fileName(item), Bytes: item.Data},
	}})
	if err != nil {
		if isAlreadyExists(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("createNewStickerSet %s: %w", name, err)
	}
	return nil
}

func (c *client) AddToSet(ctx context.Context, ownerID int64, name string, item Item) error {
	sticker, err := json.Marshal(stickerPayload(item))
	if err != nil {
		return fmt.Errorf("failed to encode input sticker: %w", err)
	}

	params := tgbotapi.Params{
		"user_id": strconv.FormatInt(ownerID, 10),
		"name":    name,
		"sticker": string(sticker),
	}

	log.Debug().Str("name", name).Str("format", item.Format).Msg("Adding sticker to set")

	_, err = c.api.UploadFiles("addStickerToSet", params, []tgbotapi.RequestFile{{
		Name: attachName,
		Data: tgbotapi.FileBytes{Name: fileName(item), Bytes: item.Data},
	}})
	if err != nil {
		return fmt.Errorf("addStickerToSet %s: %w", name, err)
	}
	return nil
}

// attachName is the multipart field referenced by attach:// in the
// input_sticker JSON.
const attachName = "sticker_file"

func stickerPayload(item Item) inputSticker {
	return inputSticker{
		Sticker:   "attach://" + attachName,
		Format:    item.Format,
		EmojiList: []string{item.Emoji},
	}
}

func fileName(item Item) string {
	if item.Format == FormatVideo {
		return "sticker.webm"
	}
	return "sticker.png"
}

// isAlreadyExists matches the Bad Request description Telegram returns
// when a set name is taken.
func isAlreadyExists(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "already occupied")
}

// SetURL returns the public shareable URL for a sticker set name.
func SetURL(name string) string {
	return "https://t.me/addstickers/" + name
}
