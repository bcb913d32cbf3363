package chord

// Flats are folded onto sharps so enharmonic spellings compare equal.
var enharmonic = map[string]string{
	"Bb": "A#",
	"Db": "C#",
	"Eb": "D#",
	"Gb": "F#",
	"Ab": "G#",
	"B#": "C",
	"E#": "F",
	"Cb": "B",
	"Fb": "E",
}

var qualityAlias = map[string]string{
	"min": "m",
	"m":   "m",
	"maj": "maj",
	"dim": "dim",
	"aug": "aug",
	"sus": "sus",
	"add": "add",
	"":    "",
}

// CanonicalRoot folds a root spelling onto its sharp form.
func CanonicalRoot(root string) string {
	if alt, ok := enharmonic[root]; ok {
		return alt
	}
	return root
}

// Canonical returns a comparison key: enharmonics folded, min spelled m,
// sus with no number read as sus4. The rendered surface is untouched.
func (t Token) Canonical() string {
	if t.IsZero() {
		return ""
	}
	quality := qualityAlias[t.quality]
	ext := t.extension
	if quality == "sus" && ext == "" && t.sus == "" {
		ext = "4"
	}
	key := CanonicalRoot(t.Root()) + quality + ext + t.sus
	if t.bass != "" {
		key += "/" + CanonicalRoot(t.bass)
	}
	return key
}

// SameChord compares two tokens by canonical key.
func SameChord(a, b Token) bool {
	return a.Canonical() == b.Canonical()
}
