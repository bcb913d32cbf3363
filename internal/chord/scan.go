package chord

import (
	"regexp"
	"strings"
	"unicode"
)

// Match is a chord found in a line, at a 0-based rune column.
type Match struct {
	Column int
	Token  Token
}

// LineScan summarises the whitespace-separated tokens of one line.
type LineScan struct {
	Matches []Match
	// Tokens counts tokens that carry evidence; bar lines, repeat marks and
	// N.C. are neutral and not counted.
	Tokens int
	// Others holds the counted tokens that are not chords.
	Others []string
}

// Density is the share of counted tokens that are chords.
func (s LineScan) Density() float64 {
	if s.Tokens == 0 {
		return 0
	}
	return float64(len(s.Matches)) / float64(s.Tokens)
}

var repeatRE = regexp.MustCompile(`^\(?(x\d+|\d+x|\d+)\)?$`)

// Words that are spelled like chords but are far more likely to be prose.
var proseLike = map[string]bool{
	"A":  true,
	"Am": true,
}

// IsProseLike reports chord surfaces that double as common English words.
func IsProseLike(s string) bool {
	return proseLike[s]
}

func isNeutral(tok string) bool {
	if tok == "N.C." || tok == "NC" || tok == "n.c." {
		return true
	}
	if repeatRE.MatchString(tok) {
		return true
	}
	return strings.IndexFunc(tok, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) < 0
}

// ScanLine tokenises line on whitespace and reports every chord with the rune
// column where its surface begins. Surrounding parentheses and bar lines are
// peeled off before matching, so "(G)" or "|G" yield G at the inner column.
func ScanLine(line string) LineScan {
	var scan LineScan
	runes := []rune(line)
	i := 0
	for i < len(runes) {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}
		start := i
		for i < len(runes) && !unicode.IsSpace(runes[i]) {
			i++
		}
		tok := string(runes[start:i])
		if isNeutral(tok) {
			continue
		}
		scan.Tokens++
		lead, inner := trimDecoration(tok)
		if t, ok := Parse(inner); ok {
			scan.Matches = append(scan.Matches, Match{Column: start + lead, Token: t})
			continue
		}
		scan.Others = append(scan.Others, tok)
	}
	return scan
}

// trimDecoration strips bracketing punctuation around a chord surface and
// returns how many runes were removed from the front.
func trimDecoration(tok string) (int, string) {
	const deco = "([{|*"
	const tail = ")]}|*,.:"
	rs := []rune(tok)
	lead := 0
	for lead < len(rs) && strings.ContainsRune(deco, rs[lead]) {
		lead++
	}
	end := len(rs)
	for end > lead && strings.ContainsRune(tail, rs[end-1]) {
		end--
	}
	return lead, string(rs[lead:end])
}
