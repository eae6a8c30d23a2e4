// Package normalize canonicalizes raw text before pattern matching.
// The goal is to defeat cheap evasion (leetspeak punctuation, fullwidth
// unicode, spacing tricks) without touching the digits that downstream
// rules depend on: "911" must survive as "911" and "1000%" as "1000%".
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// homoglyphs maps common substitution characters back to the letter they
// imitate. Digits are deliberately absent from this map: rules that match
// emergency numbers or percentage claims need them intact. Digit-based
// substitutions ("b0mb") are handled by character classes in the pattern
// library instead.
var homoglyphs = map[rune]rune{
	'!': 'i',
	'@': 'a',
	'$': 's',
}

// Normalize lowercases text, folds unicode compatibility forms to their
// canonical shape, substitutes homoglyphs, strips everything outside
// [a-z0-9 %] and collapses runs of whitespace.
//
// Normalize is idempotent: a first pass emits only characters the second
// pass leaves untouched.
func Normalize(text string) string {
	// NFKC folds fullwidth and mathematical letterforms (Ｉｇｎｏｒｅ,
	// 𝕚𝕘𝕟𝕠𝕣𝕖) into plain ASCII before any byte-level filtering.
	text = norm.NFKC.String(text)
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	space := true // leading whitespace is dropped
	for _, r := range text {
		if sub, ok := homoglyphs[r]; ok {
			r = sub
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '%':
			b.WriteRune(r)
			space = false
		case unicode.IsSpace(r):
			if !space {
				b.WriteByte(' ')
				space = true
			}
		default:
			// Strip everything else: punctuation, control chars,
			// unmapped symbols.
		}
	}
	return strings.TrimRight(b.String(), " ")
}
