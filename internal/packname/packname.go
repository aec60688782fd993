// Package packname derives canonical sticker-set identifiers from
// human-readable pack titles. Telegram requires set names to start with
// a letter and contain only letters, digits, and underscores; the same
// input must always produce the same name because it decides whether a
// set already exists remotely.
package packname

import (
	"strings"
	"unicode"
)

// Make converts a display title and owner handle into a canonical
// sticker-set identifier of the form <cleaned-title>_by_<handle>.
//
// Whitespace runs collapse to a single underscore, every character
// outside [A-Za-z0-9_] is stripped, repeated underscores collapse,
// leading non-letters are removed (the identifier must start with a
// letter), and trailing underscores are trimmed.
func Make(title, ownerHandle string) string {
	cleaned := collapseWhitespace(title)
	cleaned = stripDisallowed(cleaned)
	cleaned = collapseUnderscores(cleaned)
	cleaned = stripLeadingNonLetters(cleaned)
	cleaned = strings.TrimRight(cleaned, "_")
	return cleaned + "_by_" + ownerHandle
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	inRun := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inRun {
				b.WriteByte('_')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

func stripDisallowed(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseUnderscores(s string) string {
	var b strings.Builder
	prev := false
	for _, r := range s {
		if r == '_' {
			if !prev {
				b.WriteRune(r)
			}
			prev = true
			continue
		}
		prev = false
		b.WriteRune(r)
	}
	return b.String()
}

func stripLeadingNonLetters(s string) string {
	for i, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return s[i:]
		}
	}
	return ""
}
