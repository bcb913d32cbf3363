package chordpro

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"songbook/internal/chord"
	"songbook/internal/song"
)

var (
	directiveRE = regexp.MustCompile(`^\{\s*([a-zA-Z_]+)\s*(?::\s*(.*?))?\s*\}$`)
	inlineRE    = regexp.MustCompile(`\[([^\[\]]*)\]`)
)

var shortSections = map[string]string{
	"sov": "start_of_verse", "eov": "end_of_verse",
	"soc": "start_of_chorus", "eoc": "end_of_chorus",
	"sob": "start_of_bridge", "eob": "end_of_bridge",
}

// Read parses ChordPro into a Song. Unknown directives and comments are
// ignored; inline chords that do not lex as chords are an error.
func Read(r io.Reader) (song.Song, error) {
	s := song.Song{}
	var cur *song.Section
	closeSection := func() {
		if cur == nil {
			return
		}
		for len(cur.Lines) > 0 && cur.Lines[len(cur.Lines)-1].IsBlank() {
			cur.Lines = cur.Lines[:len(cur.Lines)-1]
		}
		if len(cur.Lines) > 0 {
			s.Sections = append(s.Sections, *cur)
		}
		cur = nil
	}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := strings.TrimRight(sc.Text(), " \t\r")
		if strings.HasPrefix(raw, "#") {
			continue
		}
		if m := directiveRE.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
			name := strings.ToLower(m[1])
			if long, ok := shortSections[name]; ok {
				name = long
			}
			value := m[2]
			switch {
			case name == "title" || name == "t":
				s.Title = value
			case name == "artist":
				s.Artist = value
			case name == "key":
				s.Key = value
			case name == "meta":
				k, v, _ := strings.Cut(value, " ")
				if s.Metadata == nil {
					s.Metadata = map[string]string{}
				}
				s.Metadata[k] = strings.TrimSpace(v)
			case strings.HasPrefix(name, "start_of_"):
				closeSection()
				sec, _ := song.SectionFor(strings.TrimPrefix(name, "start_of_"))
				cur = &song.Section{Name: sec}
			case strings.HasPrefix(name, "end_of_"):
				closeSection()
			}
			continue
		}
		if raw == "" {
			if cur != nil {
				cur.Lines = append(cur.Lines, song.AlignedLine{})
			}
			continue
		}
		line, err := parseLine(raw)
		if err != nil {
			return song.Song{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if cur == nil {
			cur = &song.Section{}
		}
		cur.Lines = append(cur.Lines, line)
	}
	if err := sc.Err(); err != nil {
		return song.Song{}, err
	}
	closeSection()
	if s.Sections == nil {
		s.Sections = []song.Section{}
	}
	return s, nil
}

// ReadString parses ChordPro text.
func ReadString(text string) (song.Song, error) {
	return Read(strings.NewReader(text))
}

// parseLine splits inline chords out of a lyric, recording each chord at the
// rune column where it sat in the lyric.
func parseLine(raw string) (song.AlignedLine, error) {
	var text strings.Builder
	var chords song.ChordLine
	col := 0
	pos := 0
	for _, m := range inlineRE.FindAllStringSubmatchIndex(raw, -1) {
		seg := raw[pos:m[0]]
		text.WriteString(seg)
		col += utf8.RuneCountInString(seg)
		surface := raw[m[2]:m[3]]
		tok, ok := chord.Parse(surface)
		if !ok {
			return song.AlignedLine{}, fmt.Errorf("bad chord %q", surface)
		}
		chords = append(chords, song.Placement{Column: col, Chord: tok})
		pos = m[1]
	}
	text.WriteString(raw[pos:])
	return song.AlignedLine{
		Text:   strings.TrimRight(text.String(), " "),
		Chords: chords.Normalize(),
	}, nil
}
