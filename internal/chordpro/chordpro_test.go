package chordpro

import (
	"regexp"
	"strings"
	"testing"

	"songbook/internal/chord"
	"songbook/internal/song"
)

func placements(pairs ...any) song.ChordLine {
	var out song.ChordLine
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, song.Placement{Column: pairs[i].(int), Chord: chord.MustParse(pairs[i+1].(string))})
	}
	return out
}

func sample() song.Song {
	return song.Song{
		Title:    "Man of Constant Sorrow",
		Artist:   "Stanley Brothers",
		Key:      "C",
		Metadata: map[string]string{"written_by": "Dick Burnett"},
		Sections: []song.Section{
			{Name: song.SectionVerse, Lines: []song.AlignedLine{
				{Text: "I am the ma-n of constant sorrow", Chords: placements(0, "G", 14, "G7", 26, "C")},
				{Text: "", Chords: placements(0, "C", 4, "G", 8, "D")},
				{},
				{Text: "Short", Chords: placements(2, "Bb/F#", 12, "G", 20, "D")},
			}},
			{Name: song.SectionChorus, Lines: []song.AlignedLine{
				{Text: "No chords here"},
			}},
		},
	}
}

func TestLineRendering(t *testing.T) {
	cases := []struct {
		line song.AlignedLine
		want string
	}{
		{song.AlignedLine{Text: "I am the ma-n of constant sorrow", Chords: placements(0, "G", 14, "G7", 26, "C")},
			"[G]I am the ma-n [G7]of constant [C]sorrow"},
		{song.AlignedLine{Chords: placements(0, "C", 4, "G", 8, "D")}, "[C] [G] [D]"},
		{song.AlignedLine{Text: "road", Chords: placements(1, "A", 9, "G", 12, "D")}, "r[A]oad [G] [D]"},
		{song.AlignedLine{Text: "plain lyric  "}, "plain lyric"},
	}
	for _, tc := range cases {
		if got := Line(tc.line); got != tc.want {
			t.Fatalf("Line=%q want %q", got, tc.want)
		}
	}
}

func TestEmitDirectivesAndSections(t *testing.T) {
	out := Emit(sample())
	for _, want := range []string{
		"{title: Man of Constant Sorrow}\n{artist: Stanley Brothers}\n{key: C}\n{meta: written_by Dick Burnett}\n",
		"{start_of_verse}\n[G]I am",
		"{end_of_verse}\n\n{start_of_chorus}\nNo chords here\n{end_of_chorus}\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
	for i, l := range strings.Split(out, "\n") {
		if l != strings.TrimRight(l, " \t") {
			t.Fatalf("line %d has trailing whitespace: %q", i, l)
		}
	}
}

var chordMarkup = regexp.MustCompile(`\[[^\]]*\]`)

func TestStrippedLineEqualsLyric(t *testing.T) {
	for _, l := range sample().Lines() {
		if !l.HasText() {
			continue
		}
		got := strings.TrimSpace(chordMarkup.ReplaceAllString(Line(l), ""))
		if got != l.Text {
			t.Fatalf("stripped=%q want %q", got, l.Text)
		}
	}
}

func TestRoundTripIsFixedPoint(t *testing.T) {
	first := Emit(sample())
	parsed, err := ReadString(first)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if parsed.Title != "Man of Constant Sorrow" || parsed.Metadata["written_by"] != "Dick Burnett" {
		t.Fatalf("header=%+v", parsed)
	}
	if len(parsed.Sections) != 2 || parsed.Sections[1].Name != song.SectionChorus {
		t.Fatalf("sections=%+v", parsed.Sections)
	}
	if second := Emit(parsed); second != first {
		t.Fatalf("round trip changed output:\n%s\n---\n%s", first, second)
	}
	verse := parsed.Sections[0].Lines[0]
	if verse.Chords[1].Column != 14 || verse.Chords[1].Chord.String() != "G7" {
		t.Fatalf("verse chords=%+v", verse.Chords)
	}
}

func TestReadRejectsBadChord(t *testing.T) {
	if _, err := ReadString("{title: x}\nhello [Hx] there\n"); err == nil {
		t.Fatalf("expected error for bad chord")
	}
}

func TestReadShortDirectives(t *testing.T) {
	s, err := ReadString("{t: Rocky Top}\n{soc}\n[G]Rocky top\n{eoc}\n")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s.Title != "Rocky Top" || len(s.Sections) != 1 || s.Sections[0].Name != song.SectionChorus {
		t.Fatalf("song=%+v", s)
	}
}
