package chord

import "testing"

func TestParseSurfaces(t *testing.T) {
	cases := []struct {
		in      string
		ok      bool
		root    string
		quality string
		ext     string
		sus     string
		bass    string
	}{
		{"G", true, "G", "", "", "", ""},
		{"G7", true, "G", "", "7", "", ""},
		{"Am", true, "A", "m", "", "", ""},
		{"F#m7", true, "F#", "m", "7", "", ""},
		{"Bb/F#", true, "Bb", "", "", "", "F#"},
		{"Cmaj7", true, "C", "maj", "7", "", ""},
		{"Asus4", true, "A", "sus", "4", "", ""},
		{"D7sus4", true, "D", "", "7", "sus4", ""},
		{"Cadd9", true, "C", "add", "9", "", ""},
		{"Edim", true, "E", "dim", "", "", ""},
		{"E♭", true, "Eb", "", "", "", ""},
		{"H7", false, "", "", "", "", ""},
		{"am", false, "", "", "", "", ""},
		{"Gm7b5", false, "", "", "", "", ""},
		{"the", false, "", "", "", "", ""},
		{"", false, "", "", "", "", ""},
	}
	for _, c := range cases {
		tok, ok := Parse(c.in)
		if ok != c.ok {
			t.Fatalf("Parse(%q) ok=%v want %v", c.in, ok, c.ok)
		}
		if !ok {
			continue
		}
		if tok.String() != c.in {
			t.Fatalf("Parse(%q) surface=%q", c.in, tok.String())
		}
		if tok.Root() != c.root || tok.Quality() != c.quality || tok.Extension() != c.ext || tok.Sus() != c.sus || tok.Bass() != c.bass {
			t.Fatalf("Parse(%q) = root %q quality %q ext %q sus %q bass %q", c.in, tok.Root(), tok.Quality(), tok.Extension(), tok.Sus(), tok.Bass())
		}
	}
}

func TestCanonicalFoldsEnharmonics(t *testing.T) {
	if !SameChord(MustParse("Bb"), MustParse("A#")) {
		t.Fatalf("Bb and A# should compare equal")
	}
	if !SameChord(MustParse("Amin"), MustParse("Am")) {
		t.Fatalf("Amin and Am should compare equal")
	}
	if !SameChord(MustParse("Gsus"), MustParse("Gsus4")) {
		t.Fatalf("Gsus reads as Gsus4")
	}
	if got := MustParse("Bb/Gb").Canonical(); got != "A#/F#" {
		t.Fatalf("canonical=%q", got)
	}
	if SameChord(MustParse("G"), MustParse("G7")) {
		t.Fatalf("G and G7 differ")
	}
}

func TestScanLineColumns(t *testing.T) {
	scan := ScanLine("G             G7          C")
	if len(scan.Matches) != 3 {
		t.Fatalf("matches=%d", len(scan.Matches))
	}
	want := []int{0, 14, 26}
	for i, m := range scan.Matches {
		if m.Column != want[i] {
			t.Fatalf("match %d column=%d want %d", i, m.Column, want[i])
		}
	}
	if scan.Density() != 1 {
		t.Fatalf("density=%v", scan.Density())
	}
}

func TestScanLineDecorationAndNeutralTokens(t *testing.T) {
	scan := ScanLine("| (G)  C | D  (x2)")
	if scan.Tokens != 3 {
		t.Fatalf("tokens=%d", scan.Tokens)
	}
	if len(scan.Matches) != 3 {
		t.Fatalf("matches=%d", len(scan.Matches))
	}
	if scan.Matches[0].Column != 3 || scan.Matches[0].Token.String() != "G" {
		t.Fatalf("first match=%+v", scan.Matches[0])
	}
}

func TestScanLineProse(t *testing.T) {
	scan := ScanLine("A man of constant sorrow")
	if scan.Density() >= 0.5 {
		t.Fatalf("prose density=%v", scan.Density())
	}
	if len(scan.Others) != 4 {
		t.Fatalf("others=%v", scan.Others)
	}
	if !IsProseLike("A") || IsProseLike("G") {
		t.Fatalf("prose-like table")
	}
}

func TestTokenTextRoundTrip(t *testing.T) {
	var tok Token
	if err := tok.UnmarshalText([]byte("Bb/F#")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, _ := tok.MarshalText()
	if string(b) != "Bb/F#" {
		t.Fatalf("marshal=%q", b)
	}
	if err := tok.UnmarshalText([]byte("nope")); err == nil {
		t.Fatalf("expected error")
	}
}
