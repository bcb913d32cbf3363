// Package chordpro writes songs as ChordPro text and reads them back.
package chordpro

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"songbook/internal/song"
)

// Emit renders s as ChordPro.
func Emit(s song.Song) string {
	var b strings.Builder
	_ = Write(&b, s)
	return b.String()
}

// Write renders s as ChordPro to w. Lines never end in whitespace.
func Write(w io.Writer, s song.Song) error {
	var lines []string
	lines = append(lines, directive("title", s.Title), directive("artist", s.Artist))
	if s.Key != "" {
		lines = append(lines, directive("key", s.Key))
	}
	keys := maps.Keys(s.Metadata)
	slices.Sort(keys)
	for _, k := range keys {
		lines = append(lines, directive("meta", k+" "+s.Metadata[k]))
	}

	for _, sec := range s.Sections {
		if len(sec.Lines) == 0 {
			continue
		}
		lines = append(lines, "")
		stem := sectionStem(sec.Name)
		if stem != "" {
			lines = append(lines, "{start_of_"+stem+"}")
		}
		for _, l := range sec.Lines {
			lines = append(lines, Line(l))
		}
		if stem != "" {
			lines = append(lines, "{end_of_"+stem+"}")
		}
	}
	for _, l := range lines {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func directive(name, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "{" + name + ":}"
	}
	return fmt.Sprintf("{%s: %s}", name, value)
}

func sectionStem(name song.SectionName) string {
	return strings.ToLower(string(name))
}

// Line renders one aligned line: chords are inserted at their columns, and
// chords past the end of the lyric trail it as separate tokens.
func Line(l song.AlignedLine) string {
	text := []rune(strings.TrimRight(l.Text, " "))
	var b strings.Builder
	pos := 0
	var trailing []string
	for _, p := range l.Chords {
		if p.Column >= len(text) {
			trailing = append(trailing, "["+p.Chord.String()+"]")
			continue
		}
		if p.Column > pos {
			b.WriteString(string(text[pos:p.Column]))
			pos = p.Column
		}
		b.WriteString("[" + p.Chord.String() + "]")
	}
	b.WriteString(string(text[pos:]))
	if len(trailing) > 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.Join(trailing, " "))
	}
	return strings.TrimRight(b.String(), " ")
}
