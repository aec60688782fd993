// Package callback encodes the compact token carried on pack-selection
// inline buttons. The token binds the chosen pack to the user the
// keyboard was issued to, so a forwarded or replayed button press from
// another account can be detected and dropped.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Prefix distinguishes pack-selection callbacks from any other inline
// button the bot may send.
const Prefix = "pack:"

// separator joins the pack name and issuing user id inside the token.
const separator = "|"

// maxCallbackData is Telegram's limit on callback_data payload bytes.
const maxCallbackData = 64

// ErrMalformedToken indicates a token that does not decode to a pack
// name and user id. Malformed tokens are logged and dropped, never
// surfaced to the user.
var ErrMalformedToken = errors.New("malformed pack selection token")

// Encode builds the callback payload for a pack-selection button.
// Fails if the pack name contains the separator or the payload would
// exceed Telegram's callback_data size limit.
func Encode(packName string, userID int64) (string, error) {
	if packName == "" || strings.Contains(packName, separator) {
		return "", fmt.Errorf("pack name %q cannot be encoded in a token", packName)
	}
	token := Prefix + packName + separator + strconv.FormatInt(userID, 10)
	if len(token) > maxCallbackData {
		return "", fmt.Errorf("token for pack %q exceeds %d bytes", packName, maxCallbackData)
	}
	return token, nil
}

// Decode parses a callback payload previously produced by Encode.
// The caller must compare the returned userID against the id of the
// user who actually pressed the button.
func Decode(token string) (packName string, userID int64, err error) {
	body, ok := strings.CutPrefix(token, Prefix)
	if !ok {
		return "", 0, ErrMalformedToken
	}
	parts := strings.Split(body, separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", 0, ErrMalformedToken
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, ErrMalformedToken
	}
	return parts[0], id, nil
}

// Is reports whether payload looks like a pack-selection token.
// Used by the router to decide whether this package should handle a
// callback query at all.
func Is(payload string) bool {
	return strings.HasPrefix(payload, Prefix)
}
