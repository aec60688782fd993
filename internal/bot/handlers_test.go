package bot

import (
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Jarvl/sticker-telegram-bot/internal/config"
	"github.com/Jarvl/sticker-telegram-bot/internal/media"
	"github.com/Jarvl/sticker-telegram-bot/internal/submission"
)

func TestExtractMedia(t *testing.T) {
	tests := []struct {
		name         string
		msg          *tgbotapi.Message
		wantFileID   string
		wantKind     submission.MediaKind
		wantDuration float64
	}{
		{
			name: "photo uses the largest size",
			msg: &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{
				{FileID: "small", Width: 90, Height: 90},
				{FileID: "medium", Width: 320, Height: 320},
				{FileID: "large", Width: 800, Height: 800},
			}},
			wantFileID: "large",
			wantKind:   submission.KindImage,
		},
		{
			name: "animation carries its duration",
			msg: &tgbotapi.Message{Animation: &tgbotapi.Animation{
				FileID: "anim", Duration: 7,
			}},
			wantFileID:   "anim",
			wantKind:     submission.KindAnimation,
			wantDuration: 7,
		},
		{
			name: "video is treated as an animation",
			msg: &tgbotapi.Message{Video: &tgbotapi.Video{
				FileID: "vid", Duration: 12,
			}},
			wantFileID:   "vid",
			wantKind:     submission.KindAnimation,
			wantDuration: 12,
		},
		{
			name: "gif document is an animation",
			msg: &tgbotapi.Message{Document: &tgbotapi.Document{
				FileID: "doc-gif", MimeType: "image/gif",
			}},
			wantFileID: "doc-gif",
			wantKind:   submission.KindAnimation,
		},
		{
			name: "image document is an image",
			msg: &tgbotapi.Message{Document: &tgbotapi.Document{
				FileID: "doc-png", MimeType: "image/png",
			}},
			wantFileID: "doc-png",
			wantKind:   submission.KindImage,
		},
		{
			name: "video document is an animation",
			msg: &tgbotapi.Message{Document: &tgbotapi.Document{
				FileID: "doc-webm", MimeType: "video/webm",
			}},
			wantFileID: "doc-webm",
			wantKind:   submission.KindAnimation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := extractMedia(tt.msg)
			if ref == nil {
				t.Fatal("expected a media reference, got nil")
			}
			if ref.fileID != tt.wantFileID {
				t.Errorf("fileID = %q, want %q", ref.fileID, tt.wantFileID)
			}
			if ref.kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", ref.kind, tt.wantKind)
			}
			if ref.durationSeconds != tt.wantDuration {
				t.Errorf("duration = %v, want %v", ref.durationSeconds, tt.wantDuration)
			}
		})
	}
}

func TestExtractMedia_NoMedia(t *testing.T) {
	tests := []struct {
		name string
		msg  *tgbotapi.Message
	}{
		{"plain text", &tgbotapi.Message{Text: "hello"}},
		{"pdf document", &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc", MimeType: "application/pdf"}}},
		{"audio document", &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc", MimeType: "audio/ogg"}}},
		{"empty message", &tgbotapi.Message{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ref := extractMedia(tt.msg); ref != nil {
				t.Errorf("expected nil, got %+v", ref)
			}
		})
	}
}

func TestBareMediaAccepted(t *testing.T) {
	tests := []struct {
		name string
		chat *tgbotapi.Chat
		want bool
	}{
		{"private chat", &tgbotapi.Chat{ID: 42, Type: "private"}, true},
		{"group chat", &tgbotapi.Chat{ID: -100123, Type: "group"}, false},
		{"supergroup chat", &tgbotapi.Chat{ID: -100123, Type: "supergroup"}, false},
		{"channel", &tgbotapi.Chat{ID: -100123, Type: "channel"}, false},
		{"missing chat", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &tgbotapi.Message{Chat: tt.chat}
			if got := bareMediaAccepted(msg); got != tt.want {
				t.Errorf("bareMediaAccepted = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleMessage_GroupPhotoStartsNothing(t *testing.T) {
	// A photo posted to a group without a /sticker reply must not open
	// a submission or prompt for an emoji.
	b := &Bot{
		cfg:     &config.Config{},
		manager: submission.NewManager(submission.NewMemoryStore()),
	}

	b.handleMessage(&tgbotapi.Message{
		MessageID: 9,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: -100123, Type: "supergroup"},
		Photo:     []tgbotapi.PhotoSize{{FileID: "group-photo"}},
	})

	if _, ok := b.manager.Get(42); ok {
		t.Error("group photo must not create a pending submission")
	}
}

func TestFailureText(t *testing.T) {
	tooBig := failureText(&media.SizeLimitError{Size: media.MaxClipBytes + 50*1024})
	if !strings.Contains(tooBig, "50 KB over") {
		t.Errorf("size failure should name the overage, got %q", tooBig)
	}
	if !strings.Contains(tooBig, "256 KB") {
		t.Errorf("size failure should name the limit, got %q", tooBig)
	}

	undecodable := failureText(media.ErrDecode)
	if !strings.Contains(undecodable, "could not be decoded") {
		t.Errorf("decode failure text = %q", undecodable)
	}
	wrapped := failureText(errors.Join(errors.New("normalize"), media.ErrDecode))
	if wrapped != undecodable {
		t.Errorf("wrapped decode error should map the same way, got %q", wrapped)
	}

	generic := failureText(errors.New("Bad Request: STICKERSET_INVALID"))
	if !strings.Contains(generic, "STICKERSET_INVALID") {
		t.Errorf("generic failure should carry the cause, got %q", generic)
	}
}
