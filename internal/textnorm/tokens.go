package textnorm

import (
	"strings"
	"unicode"
)

// Fold lowercases s, removes punctuation and collapses whitespace. Hyphens
// and apostrophes are dropped without a gap so "ma-n" folds to "man".
func Fold(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		case r == '-' || r == '\'' || r == '’':
		default:
			space = true
		}
	}
	return b.String()
}

// Words tokenises s into lowercase punctuation-free words.
func Words(s string) []string {
	return strings.Fields(Fold(s))
}
