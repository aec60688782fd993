package callback

import (
	"errors"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		pack   string
		userID int64
	}{
		{"Goat Pics", 12345},
		{"frogs", 1},
		{"pack_with_underscores", 987654321},
		{"A", -42},
	}

	for _, tc := range tests {
		token, err := Encode(tc.pack, tc.userID)
		if err != nil {
			t.Fatalf("Encode(%q, %d) failed: %v", tc.pack, tc.userID, err)
		}
		pack, uid, err := Decode(token)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", token, err)
		}
		if pack != tc.pack || uid != tc.userID {
			t.Errorf("Decode(Encode(%q, %d)) = (%q, %d)", tc.pack, tc.userID, pack, uid)
		}
	}
}

func TestEncode_Rejections(t *testing.T) {
	if _, err := Encode("", 1); err == nil {
		t.Error("expected error for empty pack name")
	}
	if _, err := Encode("bad|name", 1); err == nil {
		t.Error("expected error for pack name containing the separator")
	}
	if _, err := Encode(strings.Repeat("x", 80), 1); err == nil {
		t.Error("expected error for token exceeding the callback_data limit")
	}
}

func TestDecode_Malformed(t *testing.T) {
	cases := []string{
		"",
		"pack:",
		"pack:|",
		"pack:name",         // no user id
		"pack:name|",        // empty user id
		"pack:|123",         // empty name
		"pack:name|notanum", // non-integer user id
		"other:name|123",    // wrong prefix
		"name|123",          // missing prefix
	}
	for _, tc := range cases {
		if _, _, err := Decode(tc); !errors.Is(err, ErrMalformedToken) {
			t.Errorf("Decode(%q) = %v, want ErrMalformedToken", tc, err)
		}
	}
}

func TestDecode_ExtraSeparator(t *testing.T) {
	// Three segments does not decode to exactly two non-empty parts.
	if _, _, err := Decode("pack:a|b|3"); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("expected ErrMalformedToken for token with extra separator, got %v", err)
	}
}

func TestIs(t *testing.T) {
	if !Is("pack:frogs|1") {
		t.Error("Is should accept pack-selection payloads")
	}
	if Is("vote:up|1") {
		t.Error("Is should reject other payloads")
	}
}
