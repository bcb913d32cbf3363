// Package grassiness estimates how central a song is to the bluegrass canon
// from weighted artist-cover evidence.
package grassiness

type Tier string

const (
	TierStandard Tier = "Standard"
	TierLikely   Tier = "Likely"
	TierPossible Tier = "Possible"
	TierNone     Tier = "None"
)

// Recordings beyond this many per artist add nothing.
const recordingCap = 3

// TierFor maps a score onto its tier.
func TierFor(score int) Tier {
	switch {
	case score >= 10:
		return TierStandard
	case score >= 5:
		return TierLikely
	case score >= 2:
		return TierPossible
	}
	return TierNone
}

// Contribution is one artist's share of a score.
type Contribution struct {
	Artist string `json:"artist"`
	Count  int    `json:"count"`
	Weight int    `json:"weight"`
	Points int    `json:"points"`
}

// Record is the grassiness of one title.
type Record struct {
	NormalizedTitle string         `json:"normalized_title"`
	Evidence        Evidence       `json:"evidence"`
	Score           int            `json:"score"`
	Tier            Tier           `json:"tier"`
	Contributions   []Contribution `json:"contributions,omitempty"`
}

// ScoreEvidence sums weight · min(count, 3) over every artist.
func ScoreEvidence(title string, ev Evidence) Record {
	rec := Record{NormalizedTitle: title, Evidence: ev}
	for _, who := range sortedKeys(ev) {
		w := Weight(who)
		if w == 0 {
			continue
		}
		pts := w * minInt(ev[who], recordingCap)
		rec.Score += pts
		rec.Contributions = append(rec.Contributions, Contribution{Artist: who, Count: ev[who], Weight: w, Points: pts})
	}
	rec.Tier = TierFor(rec.Score)
	return rec
}

// Scorer looks titles up in a read-only catalog.
type Scorer struct {
	catalog Catalog
}

func NewScorer(cat Catalog) *Scorer {
	if cat == nil {
		cat = Catalog{}
	}
	return &Scorer{catalog: cat}
}

// Score normalises title and scores its catalog evidence. Unknown titles
// score 0 with tier None.
func (s *Scorer) Score(title string) Record {
	key := NormalizeTitle(title)
	return ScoreEvidence(key, s.catalog[key])
}

// All scores every catalog title, in title order.
func (s *Scorer) All() []Record {
	out := make([]Record, 0, len(s.catalog))
	for _, t := range s.catalog.Titles() {
		out = append(out, ScoreEvidence(t, s.catalog[t]))
	}
	return out
}
