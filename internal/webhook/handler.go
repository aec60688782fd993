// Package webhook provides the HTTP handler for Telegram webhook mode.
//
// Telegram POSTs one Update per request and, when a secret token was
// registered with setWebhook, echoes it back in the
// X-Telegram-Bot-Api-Secret-Token header. Requests with a missing or
// wrong token are rejected before the body is read.
package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// maxBodySize caps the request body (1 MB). Updates are small; media
// payloads arrive by file reference, not inline.
const maxBodySize = 1 << 20

// secretTokenHeader is the header Telegram echoes the configured secret in.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Handler receives Telegram webhook updates and forwards them to the
// dispatch function.
type Handler struct {
	secretToken string
	dispatch    func(tgbotapi.Update)
}

// NewHandler creates a webhook handler. secretToken may be empty, in
// which case the header check is skipped (not recommended outside
// local testing). dispatch is invoked once per decoded update.
func NewHandler(secretToken string, dispatch func(tgbotapi.Update)) *Handler {
	return &Handler{secretToken: secretToken, dispatch: dispatch}
}

// ServeHTTP handles POSTed updates; all other methods are rejected.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.secretToken != "" && r.Header.Get(secretTokenHeader) != h.secretToken {
		log.Warn().
			Str("remote", r.RemoteAddr).
			Msg("Webhook request with missing or invalid secret token")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		log.Warn().Err(err).Msg("Webhook payload is not a valid update")
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}

	// Acknowledge before processing; Telegram retries non-2xx responses
	// and the handlers send their own replies through the bot API.
	w.WriteHeader(http.StatusOK)

	h.dispatch(update)
}
