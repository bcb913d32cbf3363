// Package song holds the value types shared by the parser, the merge engine
// and the ChordPro emitter.
package song

import (
	"strings"

	"songbook/internal/chord"
)

// Sentinels substituted when a page exposes no title or artist.
const (
	NoTitle  = "NO TITLE FOUND"
	NoArtist = "NO ARTIST FOUND"
)

// SectionName is one of the recognised section labels; empty means anonymous.
type SectionName string

const (
	SectionNone         SectionName = ""
	SectionVerse        SectionName = "Verse"
	SectionChorus       SectionName = "Chorus"
	SectionBridge       SectionName = "Bridge"
	SectionIntro        SectionName = "Intro"
	SectionOutro        SectionName = "Outro"
	SectionInstrumental SectionName = "Instrumental"
)

// Placement is one chord at a 0-based rune column of its lyric line.
type Placement struct {
	Column int         `json:"column"`
	Chord  chord.Token `json:"chord"`
}

// ChordLine is ordered by strictly increasing column.
type ChordLine []Placement

// AlignedLine is a lyric with its chords. Text never contains '[' or ']'.
type AlignedLine struct {
	Text   string    `json:"text"`
	Chords ChordLine `json:"chords,omitempty"`
}

// HasText reports whether the lyric carries any non-space text.
func (l AlignedLine) HasText() bool {
	return strings.TrimSpace(l.Text) != ""
}

// IsBlank reports a stanza break: no text and no chords.
func (l AlignedLine) IsBlank() bool {
	return !l.HasText() && len(l.Chords) == 0
}

type Section struct {
	Name  SectionName   `json:"name,omitempty"`
	Lines []AlignedLine `json:"lines"`
}

// Song is unique by (normalised title, normalised artist).
type Song struct {
	Title    string            `json:"title"`
	Artist   string            `json:"artist"`
	Key      string            `json:"key,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Sections []Section         `json:"sections"`
}

// Lines flattens every section in order.
func (s Song) Lines() []AlignedLine {
	var out []AlignedLine
	for _, sec := range s.Sections {
		out = append(out, sec.Lines...)
	}
	return out
}

// HasChords reports whether any line carries a chord.
func (s Song) HasChords() bool {
	for _, sec := range s.Sections {
		for _, l := range sec.Lines {
			if len(l.Chords) > 0 {
				return true
			}
		}
	}
	return false
}

// TextLineCount counts lines with lyric text.
func (s Song) TextLineCount() int {
	n := 0
	for _, sec := range s.Sections {
		for _, l := range sec.Lines {
			if l.HasText() {
				n++
			}
		}
	}
	return n
}

// Identity is the uniqueness key of a song.
func (s Song) Identity() string {
	return normalizeIdentity(s.Title) + ":::" + normalizeIdentity(s.Artist)
}

func normalizeIdentity(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(v)), " ")
}

// SectionFor maps a free-form label ("CHORUS 2", "verse:") onto a SectionName.
func SectionFor(label string) (SectionName, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.HasPrefix(l, "verse"):
		return SectionVerse, true
	case strings.HasPrefix(l, "chorus"), strings.HasPrefix(l, "refrain"):
		return SectionChorus, true
	case strings.HasPrefix(l, "bridge"):
		return SectionBridge, true
	case strings.HasPrefix(l, "intro"):
		return SectionIntro, true
	case strings.HasPrefix(l, "outro"), strings.HasPrefix(l, "ending"), strings.HasPrefix(l, "tag"):
		return SectionOutro, true
	case strings.HasPrefix(l, "instrumental"), strings.HasPrefix(l, "solo"), strings.HasPrefix(l, "break"):
		return SectionInstrumental, true
	}
	return SectionNone, false
}
