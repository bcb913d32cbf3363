package classify

import (
	"strings"

	"songbook/internal/chord"
	"songbook/internal/song"
	"songbook/internal/textnorm"
)

// Pair is a chord row with the lyric it sits above. Either half may be
// missing: a chord row with no lyric is an instrumental line, a lyric with no
// chord row has an empty ChordLine.
type Pair struct {
	Section      song.SectionName
	SectionIndex int
	Chords       song.ChordLine
	Lyric        string
	HasChordRow  bool
	HasLyric     bool
	// Break marks a stanza break rather than a line.
	Break bool
	// Line is the 0-based index of the lyric (or the chord row when there is
	// no lyric) in the input.
	Line int
}

// Block is the classified body of one text block.
type Block struct {
	Pairs     []Pair
	Meta      []string
	ChordRows int
	Markers   int
}

// LyricPairs counts chord rows that found a lyric.
func (b Block) LyricPairs() int {
	n := 0
	for _, p := range b.Pairs {
		if p.HasChordRow && p.HasLyric {
			n++
		}
	}
	return n
}

// Build classifies lines and pairs every chord row with the lyric directly
// below it, allowing one blank line between them.
func Build(lines []textnorm.Line) Block {
	stripped := make([]string, len(lines))
	for i, l := range lines {
		stripped[i] = l.Stripped
	}
	kinds := Lines(stripped)

	var b Block
	section := song.SectionNone
	sectionIndex := 0
	emit := func(p Pair) {
		p.Section = section
		p.SectionIndex = sectionIndex
		b.Pairs = append(b.Pairs, p)
	}

	for i := 0; i < len(lines); i++ {
		switch kinds[i] {
		case Blank:
			if n := len(b.Pairs); n > 0 && !b.Pairs[n-1].Break && b.Pairs[n-1].SectionIndex == sectionIndex {
				emit(Pair{Break: true, Line: i})
			}
		case Meta:
			b.Meta = append(b.Meta, lines[i].Stripped)
		case Section:
			section, _ = SectionMarker(lines[i].Stripped)
			sectionIndex++
			b.Markers++
			b.trimBreak()
		case Lyric:
			emit(lyricOnly(lines[i], i))
		case Chord:
			b.ChordRows++
			j := i + 1
			if j < len(lines) && kinds[j] == Blank && j+1 < len(lines) && kinds[j+1] == Lyric {
				j++
			}
			if j < len(lines) && kinds[j] == Lyric {
				emit(aligned(lines[i], lines[j], j))
				i = j
				continue
			}
			emit(instrumental(lines[i], i))
		}
	}
	b.trimBreak()
	return b
}

func (b *Block) trimBreak() {
	if n := len(b.Pairs); n > 0 && b.Pairs[n-1].Break {
		b.Pairs = b.Pairs[:n-1]
	}
}

func lyricOnly(l textnorm.Line, at int) Pair {
	text, _ := song.TrimIndent(l.Raw)
	return Pair{Lyric: song.SanitizeLyric(text), HasLyric: true, Line: at}
}

// aligned trims the lyric's indent and shifts chord columns by the same
// amount so chords stay over the same letters.
func aligned(chordRow, lyric textnorm.Line, at int) Pair {
	text, indent := song.TrimIndent(lyric.Raw)
	scan := chord.ScanLine(chordRow.Raw)
	return Pair{
		Chords:      song.NewChordLine(scan.Matches, indent),
		Lyric:       song.SanitizeLyric(text),
		HasChordRow: true,
		HasLyric:    true,
		Line:        at,
	}
}

func instrumental(chordRow textnorm.Line, at int) Pair {
	_, indent := song.TrimIndent(chordRow.Raw)
	scan := chord.ScanLine(chordRow.Raw)
	return Pair{
		Chords:      song.NewChordLine(scan.Matches, indent),
		HasChordRow: true,
		Line:        at,
	}
}

// Sections folds pairs into song sections. Stanza breaks become blank lines.
func Sections(pairs []Pair) []song.Section {
	var out []song.Section
	cur := -1
	for _, p := range pairs {
		if len(out) == 0 || p.SectionIndex != cur {
			out = append(out, song.Section{Name: p.Section})
			cur = p.SectionIndex
		}
		sec := &out[len(out)-1]
		if p.Break {
			sec.Lines = append(sec.Lines, song.AlignedLine{})
			continue
		}
		sec.Lines = append(sec.Lines, song.AlignedLine{Text: p.Lyric, Chords: p.Chords})
	}
	return out
}

// MetaValue extracts the name from a credit line such as "Written by X".
func MetaValue(line string) (key, value string, ok bool) {
	loc := byRE.FindStringIndex(line)
	if loc == nil {
		return "", "", false
	}
	head := strings.ToLower(strings.TrimSpace(line[:loc[0]]))
	value = strings.TrimSpace(line[loc[1]:])
	switch {
	case strings.Contains(head, "record"), strings.Contains(head, "perform"):
		key = "recorded_by"
	default:
		key = "written_by"
	}
	return key, value, value != ""
}
