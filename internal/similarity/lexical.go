package similarity

import "songbook/internal/textnorm"

// Lexical scores the longest common subsequence of the folded strings:
// 2·|LCS| / (|a| + |b|).
type Lexical struct{}

func (Lexical) Mode() Mode { return ModeLexical }

func (Lexical) Score(a, b string) float64 {
	ra := []rune(textnorm.Fold(a))
	rb := []rune(textnorm.Fold(b))
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return clamp01(2 * float64(lcs(ra, rb)) / float64(len(ra)+len(rb)))
}

// lcs keeps two rows of the dynamic programming table.
func lcs(a, b []rune) int {
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
