// Package emoji provides the single-emoji predicate used to validate
// the tag a user assigns to a submission.
//
// "Single emoji" means exactly one Unicode grapheme cluster whose base
// scalar has emoji presentation. Segmenting with uniseg means ZWJ
// sequences (👨‍👩‍👧), skin-tone modifiers (👍🏽), variation selectors (❤️),
// and regional-indicator flag pairs (🇺🇦) all count as one emoji, while
// two adjacent emoji or emoji mixed with text do not.
package emoji

import (
	"unicode"

	"github.com/rivo/uniseg"
)

// emojiRanges covers the Unicode blocks whose scalars render as emoji.
// Dingbats and Miscellaneous Symbols include a handful of text-default
// characters; accepting them matches what chat clients send when the
// user picks from an emoji keyboard.
var emojiRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x203C, Hi: 0x203C, Stride: 1}, // double exclamation
		{Lo: 0x2049, Hi: 0x2049, Stride: 1}, // exclamation question
		{Lo: 0x2122, Hi: 0x2122, Stride: 1}, // trade mark
		{Lo: 0x2139, Hi: 0x2139, Stride: 1}, // information
		{Lo: 0x2194, Hi: 0x21AA, Stride: 1}, // arrows
		{Lo: 0x231A, Hi: 0x231B, Stride: 1}, // watch, hourglass
		{Lo: 0x2328, Hi: 0x2328, Stride: 1}, // keyboard
		{Lo: 0x23CF, Hi: 0x23FA, Stride: 1}, // media controls
		{Lo: 0x24C2, Hi: 0x24C2, Stride: 1}, // circled M
		{Lo: 0x25AA, Hi: 0x25FE, Stride: 1}, // geometric shapes
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1}, // misc symbols, dingbats
		{Lo: 0x2934, Hi: 0x2935, Stride: 1}, // curved arrows
		{Lo: 0x2B05, Hi: 0x2B07, Stride: 1}, // heavy arrows
		{Lo: 0x2B1B, Hi: 0x2B1C, Stride: 1}, // large squares
		{Lo: 0x2B50, Hi: 0x2B50, Stride: 1}, // star
		{Lo: 0x2B55, Hi: 0x2B55, Stride: 1}, // heavy circle
		{Lo: 0x3030, Hi: 0x3030, Stride: 1}, // wavy dash
		{Lo: 0x303D, Hi: 0x303D, Stride: 1}, // part alternation mark
		{Lo: 0x3297, Hi: 0x3299, Stride: 1}, // circled ideographs
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1F0FF, Stride: 1}, // mahjong, dominoes, cards
		{Lo: 0x1F170, Hi: 0x1F251, Stride: 1}, // enclosed alphanumerics, regional indicators
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1}, // misc symbols and pictographs
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}, // emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // transport and map
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // supplemental pictographs
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1}, // extended pictographs
	},
}

// IsSingleEmoji reports whether text is exactly one emoji grapheme.
func IsSingleEmoji(text string) bool {
	if text == "" {
		return false
	}

	gr := uniseg.NewGraphemes(text)
	clusters := 0
	var first []rune
	for gr.Next() {
		clusters++
		if clusters > 1 {
			return false
		}
		first = gr.Runes()
	}
	if clusters != 1 || len(first) == 0 {
		return false
	}

	return unicode.Is(emojiRanges, first[0])
}
