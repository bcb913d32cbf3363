package song

import (
	"sort"
	"strings"
	"unicode/utf8"

	"songbook/internal/chord"
)

var bracketReplacer = strings.NewReplacer("[", "(", "]", ")")

// SanitizeLyric swaps square brackets for parentheses. The swap keeps the
// rune count so chord columns stay aligned.
func SanitizeLyric(s string) string {
	return bracketReplacer.Replace(s)
}

// NewChordLine builds a ChordLine from lexer matches, shifted left by offset.
func NewChordLine(matches []chord.Match, offset int) ChordLine {
	out := make(ChordLine, 0, len(matches))
	for _, m := range matches {
		col := m.Column - offset
		if col < 0 {
			col = 0
		}
		out = append(out, Placement{Column: col, Chord: m.Token})
	}
	return out.Normalize()
}

// Normalize sorts by column and bumps collisions right so columns are strictly
// increasing. Relative chord order is kept.
func (c ChordLine) Normalize() ChordLine {
	if len(c) == 0 {
		return nil
	}
	out := make(ChordLine, len(c))
	copy(out, c)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	for i := 1; i < len(out); i++ {
		if out[i].Column <= out[i-1].Column {
			out[i].Column = out[i-1].Column + 1
		}
	}
	return out
}

// StrictlyIncreasing reports the ChordLine column invariant.
func (c ChordLine) StrictlyIncreasing() bool {
	for i := 1; i < len(c); i++ {
		if c[i].Column <= c[i-1].Column {
			return false
		}
	}
	return true
}

// Surfaces lists the chord surfaces in order.
func (c ChordLine) Surfaces() []string {
	out := make([]string, len(c))
	for i, p := range c {
		out[i] = p.Chord.String()
	}
	return out
}

// TrimIndent removes the leading spaces shared by a lyric and returns the
// trimmed lyric with how many runes were dropped.
func TrimIndent(lyric string) (string, int) {
	trimmed := strings.TrimLeft(lyric, " ")
	return trimmed, utf8.RuneCountInString(lyric) - utf8.RuneCountInString(trimmed)
}
