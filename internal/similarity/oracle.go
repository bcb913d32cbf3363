// Package similarity scores how alike two lyric lines are.
package similarity

// Oracle is a total, symmetric score in [0,1].
type Oracle interface {
	Score(a, b string) float64
	Mode() Mode
}

type Mode string

const (
	ModeLexical  Mode = "lexical"
	ModeSemantic Mode = "semantic"
)

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
