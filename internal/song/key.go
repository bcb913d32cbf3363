package song

import "songbook/internal/chord"

// InferKey guesses the key from the chords: songs in this tradition nearly
// always resolve to the tonic, so the final chord wins. When the final chord
// is a slash chord the most frequent root is used instead.
func InferKey(s Song) string {
	var all []chord.Token
	for _, sec := range s.Sections {
		for _, l := range sec.Lines {
			for _, p := range l.Chords {
				all = append(all, p.Chord)
			}
		}
	}
	if len(all) == 0 {
		return ""
	}
	last := all[len(all)-1]
	if !last.HasSlashBass() {
		return keyName(last)
	}

	counts := map[string]int{}
	first := map[string]chord.Token{}
	order := []string{}
	for _, t := range all {
		k := chord.CanonicalRoot(t.Root())
		if _, ok := first[k]; !ok {
			first[k] = t
			order = append(order, k)
		}
		counts[k]++
	}
	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return keyName(first[best])
}

func keyName(t chord.Token) string {
	if t.IsMinor() {
		return t.Root() + "m"
	}
	return t.Root()
}
