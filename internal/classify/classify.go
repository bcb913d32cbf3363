// Package classify tags text lines as chord rows, lyrics, metadata or blanks
// and pairs chord rows with the lyric beneath them.
package classify

import (
	"regexp"
	"strings"
	"unicode"

	"songbook/internal/chord"
	"songbook/internal/song"
)

type Kind int

const (
	Blank Kind = iota
	Meta
	Chord
	Lyric
	// Section marks a section header such as "[Chorus]" or "Verse 2:".
	Section
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "BLANK"
	case Meta:
		return "META"
	case Chord:
		return "CHORD"
	case Lyric:
		return "LYRIC"
	case Section:
		return "SECTION"
	}
	return "UNKNOWN"
}

const (
	chordDensity    = 0.70
	borderlineRatio = 0.50
	maxLowerShare   = 0.60
)

var metaRE = regexp.MustCompile(`(?i)^(as\s+)?(recorded|written|performed|composed)\s+by\s+\S|^words\s+(and|&)\s+music\s+by\s+\S|^(words|music|lyrics)\s+by\s+\S`)

var byRE = regexp.MustCompile(`(?i)\bby\s+`)

var (
	bracketMarkerRE = regexp.MustCompile(`^\[([^\[\]]+)\]:?$`)
	bareMarkerRE    = regexp.MustCompile(`(?i)^(verse|chorus|refrain|bridge|intro|outro|instrumental|solo|break|ending|tag)(\s*\d+)?\s*:?$`)
)

// SectionMarker reports whether stripped is a section header and which
// section it opens. Unrecognised bracketed labels open an anonymous section.
func SectionMarker(stripped string) (song.SectionName, bool) {
	if m := bracketMarkerRE.FindStringSubmatch(stripped); m != nil {
		name, _ := song.SectionFor(m[1])
		return name, true
	}
	if bareMarkerRE.MatchString(stripped) {
		name, _ := song.SectionFor(stripped)
		return name, true
	}
	return song.SectionNone, false
}

// IsMetaLine matches credit lines like "Written by Dick Burnett".
func IsMetaLine(stripped string) bool {
	return metaRE.MatchString(stripped)
}

// Evidence is the chord-row evidence of one line.
type Evidence struct {
	Scan       chord.LineScan
	LowerShare float64
}

// Strong lines are chord rows without needing context.
func (e Evidence) Strong() bool {
	return len(e.Scan.Matches) > 0 && e.Scan.Density() >= chordDensity && e.LowerShare <= maxLowerShare
}

// Borderline lines are chord rows only when a lyric sits right below. A line
// whose only chords are English words such as "A" needs strong evidence.
func (e Evidence) Borderline() bool {
	return !e.Strong() && e.hasPlainChord() && e.Scan.Density() >= borderlineRatio && e.LowerShare <= maxLowerShare
}

func (e Evidence) hasPlainChord() bool {
	for _, m := range e.Scan.Matches {
		if !chord.IsProseLike(m.Token.String()) {
			return true
		}
	}
	return false
}

// Measure computes chord evidence. Chord quality suffixes (the "sus" of
// Asus4, the "m" of Am) do not count toward the lowercase share; only the
// letters of non-chord tokens and chord roots do.
func Measure(stripped string) Evidence {
	scan := chord.ScanLine(stripped)
	var lower, letters int
	for _, m := range scan.Matches {
		letters++
		if m.Token.HasSlashBass() {
			letters++
		}
	}
	for _, tok := range scan.Others {
		for _, r := range tok {
			if !unicode.IsLetter(r) {
				continue
			}
			letters++
			if unicode.IsLower(r) {
				lower++
			}
		}
	}
	share := 0.0
	if letters > 0 {
		share = float64(lower) / float64(letters)
	}
	return Evidence{Scan: scan, LowerShare: share}
}

// Line classifies one stripped line without context.
// Ambiguous lines fall back to Lyric: chords are additive, lyrics are not.
func Line(stripped string) Kind {
	stripped = strings.TrimSpace(stripped)
	if stripped == "" {
		return Blank
	}
	if _, ok := SectionMarker(stripped); ok {
		return Section
	}
	if IsMetaLine(stripped) {
		return Meta
	}
	if Measure(stripped).Strong() {
		return Chord
	}
	return Lyric
}

// Lines classifies a sequence with context: title-cased phrases before the
// first body line are metadata, and borderline chord rows directly above a
// lyric are chord rows.
func Lines(stripped []string) []Kind {
	kinds := make([]Kind, len(stripped))
	borderline := make([]bool, len(stripped))
	for i, s := range stripped {
		kinds[i] = Line(s)
		if kinds[i] == Lyric && Measure(strings.TrimSpace(s)).Borderline() {
			borderline[i] = true
		}
	}
	for i := range kinds {
		if borderline[i] && i+1 < len(kinds) && kinds[i+1] == Lyric && !borderline[i+1] {
			kinds[i] = Chord
		}
	}
	for i, s := range stripped {
		if kinds[i] == Blank || kinds[i] == Meta {
			continue
		}
		if kinds[i] == Lyric && IsTitlePhrase(strings.TrimSpace(s)) {
			kinds[i] = Meta
			continue
		}
		break
	}
	return kinds
}

var minorWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true, "in": true,
	"on": true, "to": true, "for": true, "by": true, "at": true, "or": true,
	"but": true, "from": true, "with": true, "is": true, "o'": true, "de": true,
}

const maxTitleWords = 10

// IsTitlePhrase reports a single title-cased phrase: every significant word
// capitalised, no sentence punctuation, and not made only of chords.
func IsTitlePhrase(stripped string) bool {
	words := strings.Fields(stripped)
	if len(words) == 0 || len(words) > maxTitleWords {
		return false
	}
	if strings.ContainsAny(stripped, ".,;!") {
		return false
	}
	nonChord := false
	for i, w := range words {
		if !chord.IsChord(w) {
			nonChord = true
		}
		first := []rune(w)[0]
		if !unicode.IsLetter(first) {
			if unicode.IsDigit(first) || first == '(' || first == '\'' || first == '"' {
				continue
			}
			return false
		}
		if unicode.IsUpper(first) {
			continue
		}
		if i > 0 && minorWords[strings.ToLower(w)] {
			continue
		}
		return false
	}
	return nonChord
}
