package classify

import (
	"strings"
	"testing"

	"songbook/internal/song"
	"songbook/internal/textnorm"
)

func TestLineKinds(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want Kind
	}{
		{"", Blank},
		{"   ", Blank},
		{"Written by Dick Burnett", Meta},
		{"Words and Music by Bill Monroe", Meta},
		{"G    C    D", Chord},
		{"Asus4   D7   G/B", Chord},
		{"| G  /  C  | D  x2", Chord},
		{"I am the man", Lyric},
		{"A man of constant sorrow", Lyric},
		{"[Chorus]", Section},
		{"Verse 2:", Section},
	}
	for _, tc := range cases {
		if got := Line(tc.in); got != tc.want {
			t.Fatalf("Line(%q)=%s want %s", tc.in, got, tc.want)
		}
	}
}

func TestLinesWithContext(t *testing.T) {
	t.Parallel()
	kinds := Lines([]string{"Written by Dick Burnett", "G    C    D", "I am the man"})
	want := []Kind{Meta, Chord, Lyric}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds=%v want %v", kinds, want)
		}
	}
}

func TestBorderlineChordRowNeedsLyricBelow(t *testing.T) {
	t.Parallel()
	// Two chords and two words: density 0.5.
	row := "G  C  Hold On"
	kinds := Lines([]string{"i said", row, "hold on to the line"})
	if kinds[1] != Chord {
		t.Fatalf("borderline row above lyric should be a chord row, got %s", kinds[1])
	}
	kinds = Lines([]string{"i said", row})
	if kinds[1] != Lyric {
		t.Fatalf("borderline row without lyric should be a lyric, got %s", kinds[1])
	}
}

func TestProseChordWordsStayLyric(t *testing.T) {
	t.Parallel()
	// "A" is the only chord and reads as an article.
	kinds := Lines([]string{"i said", "A Day", "in the life of a fool"})
	if kinds[1] != Lyric {
		t.Fatalf("prose-like row should be a lyric, got %s", kinds[1])
	}
	if Measure("A Day").Borderline() || !Measure("G Day").Borderline() {
		t.Fatalf("borderline should ignore prose-like chords only")
	}
}

func TestTitlePreambleIsMeta(t *testing.T) {
	t.Parallel()
	kinds := Lines([]string{"Man of Constant Sorrow", "", "G   C", "I am a man"})
	if kinds[0] != Meta {
		t.Fatalf("title line=%s", kinds[0])
	}
	kinds = Lines([]string{"G   C", "Man of Constant Sorrow"})
	if kinds[1] != Lyric {
		t.Fatalf("title-cased body line=%s", kinds[1])
	}
}

func TestBuildPairsColumnsAndIndent(t *testing.T) {
	t.Parallel()
	lines := textnorm.SplitText(strings.Join([]string{
		"[Verse 1]",
		"  G             G7          C",
		"  I am the man of constant sorrow",
		"",
		"G   C   D",
		"",
		"[Chorus]",
		"Oh the chorus line",
	}, "\n"))
	b := Build(lines)
	if b.Markers != 2 || b.ChordRows != 2 {
		t.Fatalf("markers=%d chordRows=%d", b.Markers, b.ChordRows)
	}
	first := b.Pairs[0]
	if first.Lyric != "I am the man of constant sorrow" || first.Section != song.SectionVerse {
		t.Fatalf("first pair=%+v", first)
	}
	cols := []int{first.Chords[0].Column, first.Chords[1].Column, first.Chords[2].Column}
	if cols[0] != 0 || cols[1] != 14 || cols[2] != 26 {
		t.Fatalf("columns=%v", cols)
	}

	sections := Sections(b.Pairs)
	if len(sections) != 2 {
		t.Fatalf("sections=%d", len(sections))
	}
	verse := sections[0].Lines
	if len(verse) != 3 || !verse[1].IsBlank() || verse[2].HasText() || len(verse[2].Chords) != 3 {
		t.Fatalf("verse=%+v", verse)
	}
	if sections[1].Name != song.SectionChorus || sections[1].Lines[0].Text != "Oh the chorus line" {
		t.Fatalf("chorus=%+v", sections[1])
	}
}

func TestBuildSkipsOneBlankBetweenChordAndLyric(t *testing.T) {
	t.Parallel()
	b := Build(textnorm.SplitText("D      A\n\nDown the road [slowly]\n"))
	if len(b.Pairs) != 1 {
		t.Fatalf("pairs=%+v", b.Pairs)
	}
	p := b.Pairs[0]
	if !p.HasChordRow || !p.HasLyric || p.Lyric != "Down the road (slowly)" {
		t.Fatalf("pair=%+v", p)
	}
}

func TestMetaValue(t *testing.T) {
	t.Parallel()
	key, val, ok := MetaValue("Recorded by The Stanley Brothers")
	if !ok || key != "recorded_by" || val != "The Stanley Brothers" {
		t.Fatalf("got %q %q %v", key, val, ok)
	}
	key, val, ok = MetaValue("Written by Dick Burnett")
	if !ok || key != "written_by" || val != "Dick Burnett" {
		t.Fatalf("got %q %q %v", key, val, ok)
	}
}
