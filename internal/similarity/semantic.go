package similarity

import (
	"math"

	"songbook/internal/textnorm"
)

// Semantic averages, in both directions, each word's best cosine match
// against the other line's words. Out-of-vocabulary words are skipped.
type Semantic struct {
	emb Embeddings
}

func NewSemantic(emb Embeddings) *Semantic {
	return &Semantic{emb: emb}
}

func (*Semantic) Mode() Mode { return ModeSemantic }

func (s *Semantic) Score(a, b string) float64 {
	va := s.vectors(a)
	vb := s.vectors(b)
	if len(va) == 0 || len(vb) == 0 {
		return 0
	}
	return clamp01((bestAverage(va, vb) + bestAverage(vb, va)) / 2)
}

func (s *Semantic) vectors(text string) [][]float32 {
	var out [][]float32
	for _, w := range textnorm.Words(text) {
		if v, ok := s.emb.Vector(w); ok {
			out = append(out, v)
		}
	}
	return out
}

func bestAverage(from, to [][]float32) float64 {
	var sum float64
	for _, a := range from {
		best := -1.0
		for _, b := range to {
			if c := cosine(a, b); c > best {
				best = c
			}
		}
		sum += best
	}
	return sum / float64(len(from))
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		if i >= len(b) {
			break
		}
		af, bf := float64(a[i]), float64(b[i])
		dot += af * bf
		na += af * af
		nb += bf * bf
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
