package song

import (
	"testing"

	"songbook/internal/chord"
)

func TestNormalizeBumpsDuplicateColumns(t *testing.T) {
	line := ChordLine{
		{Column: 4, Chord: chord.MustParse("G")},
		{Column: 4, Chord: chord.MustParse("C")},
		{Column: 2, Chord: chord.MustParse("D")},
	}.Normalize()
	if !line.StrictlyIncreasing() {
		t.Fatalf("not strictly increasing: %+v", line)
	}
	got := line.Surfaces()
	want := []string{"D", "G", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order=%v want %v", got, want)
		}
	}
	if line[2].Column != 5 {
		t.Fatalf("bumped column=%d", line[2].Column)
	}
}

func TestSanitizeLyricKeepsLength(t *testing.T) {
	in := "Oh [spoken] yes"
	out := SanitizeLyric(in)
	if out != "Oh (spoken) yes" {
		t.Fatalf("out=%q", out)
	}
	if len(out) != len(in) {
		t.Fatalf("length changed")
	}
}

func TestInferKey(t *testing.T) {
	s := Song{Sections: []Section{{Lines: []AlignedLine{
		{Text: "x", Chords: ChordLine{{Column: 0, Chord: chord.MustParse("D")}, {Column: 2, Chord: chord.MustParse("A7")}}},
		{Text: "y", Chords: ChordLine{{Column: 0, Chord: chord.MustParse("G")}}},
	}}}}
	if got := InferKey(s); got != "G" {
		t.Fatalf("key=%q", got)
	}

	minor := Song{Sections: []Section{{Lines: []AlignedLine{
		{Text: "x", Chords: ChordLine{{Column: 0, Chord: chord.MustParse("Em")}, {Column: 3, Chord: chord.MustParse("D/F#")}}},
		{Text: "y", Chords: ChordLine{{Column: 0, Chord: chord.MustParse("Em7")}, {Column: 3, Chord: chord.MustParse("C/G")}}},
	}}}}
	if got := InferKey(minor); got != "Em" {
		t.Fatalf("key=%q", got)
	}
	if got := InferKey(Song{}); got != "" {
		t.Fatalf("empty key=%q", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Man of Constant Sorrow":       "man-of-constant-sorrow",
		"  Rollin' in My Sweet Baby's ": "rollin-in-my-sweet-babys",
		"Foggy Mountain Breakdown!!":   "foggy-mountain-breakdown",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q)=%q want %q", in, got, want)
		}
	}
}

func TestSectionFor(t *testing.T) {
	cases := []struct {
		in   string
		want SectionName
		ok   bool
	}{
		{"Verse 2", SectionVerse, true},
		{"CHORUS", SectionChorus, true},
		{"Instrumental break", SectionInstrumental, true},
		{"Banjo", SectionNone, false},
	}
	for _, c := range cases {
		got, ok := SectionFor(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("SectionFor(%q)=%q,%v", c.in, got, ok)
		}
	}
}

func TestParseReferenceJSON(t *testing.T) {
	raw := []byte(`{"title":"Man of Constant Sorrow","artist":"Stanley Brothers","sections":[{"lines":[{"text":"I am a man of constant sorrow  "},{"text":""}]}]}`)
	s, err := ParseReferenceJSON(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.TextLineCount() != 1 {
		t.Fatalf("text lines=%d", s.TextLineCount())
	}
	if s.Sections[0].Lines[0].Text != "I am a man of constant sorrow" {
		t.Fatalf("text=%q", s.Sections[0].Lines[0].Text)
	}

	flat, err := ParseReferenceJSON([]byte(`{"lines":["one","two"]}`))
	if err != nil {
		t.Fatalf("parse flat: %v", err)
	}
	if flat.Title != NoTitle || flat.Artist != NoArtist || flat.TextLineCount() != 2 {
		t.Fatalf("flat=%+v", flat)
	}

	if _, err := ParseReferenceJSON([]byte(`{`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
