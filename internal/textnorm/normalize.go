// Package textnorm turns raw HTML or text into visual lines with intra-line
// spacing intact, which chord column recovery depends on.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tabWidth = 8

// Line is one physical line: Raw keeps leading spaces (chord columns are
// measured against it); Stripped has both ends trimmed.
type Line struct {
	Raw      string
	Stripped string
}

// NewLine builds a Line from already cleaned text.
func NewLine(raw string) Line {
	raw = strings.TrimRight(raw, " ")
	return Line{Raw: raw, Stripped: strings.TrimSpace(raw)}
}

// Blank reports an empty stripped line.
func (l Line) Blank() bool { return l.Stripped == "" }

// decorative runes carry no lyric or chord meaning: emoji and dingbats,
// zero-width and bidi format characters, private use glyphs. Sharp and flat
// signs are kept because chord surfaces may use them.
func decorative(r rune) bool {
	switch r {
	case '♯', '♭', '\n':
		return false
	}
	if r == '\t' || r == ' ' {
		return false
	}
	return unicode.Is(unicode.So, r) || unicode.Is(unicode.Cf, r) ||
		unicode.Is(unicode.Co, r) || unicode.IsControl(r)
}

func exoticSpace(r rune) rune {
	if r != '\n' && r != '\t' && unicode.IsSpace(r) {
		return ' '
	}
	return r
}

func newCleaner() transform.Transformer {
	return transform.Chain(norm.NFKC, runes.Remove(runes.Predicate(decorative)), runes.Map(exoticSpace))
}

// Clean applies NFKC, drops decorative runes, maps exotic spaces to ASCII
// space and expands tabs to 8-column stops. Newlines are preserved.
func Clean(s string) string {
	out, _, err := transform.String(newCleaner(), s)
	if err != nil {
		out = s
	}
	if strings.ContainsRune(out, '\t') {
		out = expandTabs(out)
	}
	return out
}

func expandTabs(s string) string {
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// SplitText cleans plain text and splits it into lines.
func SplitText(text string) []Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = Clean(text)
	parts := strings.Split(text, "\n")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	out := make([]Line, len(parts))
	for i, p := range parts {
		out[i] = NewLine(p)
	}
	return out
}
