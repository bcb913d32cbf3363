package grassiness

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	instrumentalSuffix = []string{"(instrumental)", "[instrumental]", "- instrumental"}
	trailingWords      = []string{"chords", "lyrics"}
)

// NormalizeTitle folds a song title into its catalog key: lowercase, no
// accents or punctuation, single spaces, and without a leading "the", an
// "(instrumental)" suffix or a trailing "chords"/"lyrics".
func NormalizeTitle(title string) string {
	s := strings.ToLower(stripAccents(strings.TrimSpace(title)))
	for _, suf := range instrumentalSuffix {
		s = strings.TrimSpace(strings.TrimSuffix(s, suf))
	}
	s = removePunct(s)
	s = strings.TrimPrefix(s, "the ")
	for {
		trimmed := false
		for _, w := range trailingWords {
			if strings.HasSuffix(s, " "+w) {
				s = strings.TrimSuffix(s, " "+w)
				trimmed = true
			}
		}
		if !trimmed {
			break
		}
		s = strings.TrimSuffix(s, " and")
	}
	return s
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// removePunct drops apostrophes without a gap, turns other punctuation into
// spaces and collapses whitespace.
func removePunct(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\'' || r == '’':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
