// Package merge transcribes chords from a chord-over-lyric source block onto
// an authoritative lyric reference.
//
// Source pairs are matched to reference lines in order. Matches may never
// move backwards through the reference: a pair whose best line lies before
// the previous match is dropped rather than reordering the reference.
package merge

import (
	"errors"
	"log/slog"
	"math"
	"strings"

	"songbook/internal/classify"
	"songbook/internal/similarity"
	"songbook/internal/song"
	"songbook/internal/textnorm"
)

// ErrMissingReference is returned when the reference has no lyric text.
var ErrMissingReference = errors.New("missing reference lyrics")

const (
	DefaultLexicalThreshold  = 0.60
	DefaultSemanticThreshold = 0.55

	eligibleCoverage   = 0.70
	strongSectionWords = 20
	strongSectionLines = 2
	strongLineScore    = 0.85
	scoreTieTolerance  = 1e-9
	noMatch            = -1
)

// DefaultThreshold is the acceptance threshold for an oracle mode.
func DefaultThreshold(mode similarity.Mode) float64 {
	if mode == similarity.ModeSemantic {
		return DefaultSemanticThreshold
	}
	return DefaultLexicalThreshold
}

type DropReason string

const (
	DropBelowThreshold DropReason = "below-threshold"
	DropNonMonotone    DropReason = "non-monotone"
	DropDuplicate      DropReason = "duplicate"
)

// Drop is a source pair that was not transcribed.
type Drop struct {
	SourceLine int        `json:"source_line"`
	Lyric      string     `json:"lyric"`
	Reason     DropReason `json:"reason"`
	Score      float64    `json:"score"`
	Reference  int        `json:"reference"`
}

// Match is an accepted source pair.
type Match struct {
	SourceLine int     `json:"source_line"`
	Reference  int     `json:"reference"`
	Score      float64 `json:"score"`
}

// Result is the outcome of one merge.
type Result struct {
	Song         song.Song `json:"song"`
	TotalLines   int       `json:"total_lines"`
	MatchedLines int       `json:"matched_lines"`
	Coverage     float64   `json:"coverage"`
	// Scores holds the accepted score of each reference text line, 0 when
	// the line received no chords.
	Scores   []float64 `json:"scores"`
	Matches  []Match   `json:"matches,omitempty"`
	Drops    []Drop    `json:"drops,omitempty"`
	Eligible bool      `json:"eligible"`
	Warning  string    `json:"warning,omitempty"`
}

type Options struct {
	// Threshold overrides the mode's default when set. Zero is a valid
	// threshold that accepts every best match.
	Threshold *float64
	Logger    *slog.Logger
}

type Engine struct {
	oracle    similarity.Oracle
	threshold float64
	logger    *slog.Logger
}

func NewEngine(oracle similarity.Oracle, opts Options) *Engine {
	e := &Engine{
		oracle:    oracle,
		threshold: DefaultThreshold(oracle.Mode()),
		logger:    opts.Logger,
	}
	if opts.Threshold != nil {
		e.threshold = *opts.Threshold
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

func (e *Engine) Threshold() float64 { return e.threshold }

func (e *Engine) Mode() similarity.Mode { return e.oracle.Mode() }

// refLine is one reference line with its position in the flattened song.
type refLine struct {
	section int
	text    string
	folded  string
}

// Merge aligns source onto ref.
func (e *Engine) Merge(ref song.Song, source string) (Result, error) {
	refs := flatten(ref)
	var textIdx []int
	for i, r := range refs {
		if r.folded != "" {
			textIdx = append(textIdx, i)
		}
	}
	if len(textIdx) == 0 {
		return Result{}, ErrMissingReference
	}

	block := classify.Build(textnorm.SplitText(source))
	res := Result{TotalLines: len(textIdx)}
	chords := make([]song.ChordLine, len(refs))
	scores := make([]float64, len(refs))
	sourceSection := make([]int, len(refs))
	for i := range sourceSection {
		sourceSection[i] = noMatch
	}
	inserts := map[int][]classify.Pair{}

	if block.ChordRows == 0 {
		res.Warning = "source block has no chord rows"
	}

	last := noMatch
	for _, p := range block.Pairs {
		if p.Break {
			continue
		}
		if !p.HasLyric {
			inserts[last] = append(inserts[last], p)
			continue
		}
		best, score := e.argmax(p.Lyric, refs, textIdx, last)
		drop := Drop{SourceLine: p.Line, Lyric: p.Lyric, Score: score, Reference: best}
		switch {
		case score < e.threshold:
			drop.Reason = DropBelowThreshold
		case last != noMatch && best < last:
			drop.Reason = DropNonMonotone
		case len(chords[best]) > 0:
			drop.Reason = DropDuplicate
		}
		if drop.Reason != "" {
			e.logger.Debug("alignment drop", "reason", drop.Reason, "score", score, "source_line", p.Line, "reference", best)
			res.Drops = append(res.Drops, drop)
			continue
		}
		last = best
		sourceSection[best] = p.SectionIndex
		res.Matches = append(res.Matches, Match{SourceLine: p.Line, Reference: best, Score: score})
		if len(p.Chords) == 0 {
			continue
		}
		chords[best] = Transcribe(p.Chords, p.Lyric, refs[best].text)
		scores[best] = score
	}

	for _, i := range textIdx {
		res.Scores = append(res.Scores, scores[i])
		if len(chords[i]) > 0 {
			res.MatchedLines++
		}
	}
	res.Coverage = float64(res.MatchedLines) / float64(res.TotalLines)
	groups := group(ref, layout(refs, chords, scores, inserts, sourceSection), sectionNames(block.Pairs), block.Markers > 0)
	res.Song = buildSong(ref, groups)
	res.Eligible = res.Coverage >= eligibleCoverage || strongSection(groups)
	return res, nil
}

func sectionNames(pairs []classify.Pair) map[int]song.SectionName {
	names := map[int]song.SectionName{}
	for _, p := range pairs {
		names[p.SectionIndex] = p.Section
	}
	return names
}

func flatten(ref song.Song) []refLine {
	var out []refLine
	for si, sec := range ref.Sections {
		for _, l := range sec.Lines {
			text := song.SanitizeLyric(strings.TrimRight(l.Text, " "))
			out = append(out, refLine{section: si, text: text, folded: textnorm.Fold(text)})
		}
	}
	return out
}

// argmax scores lyric against every reference text line. Ties go to the line
// nearest the expected next position, preferring lines at or after the last
// match.
func (e *Engine) argmax(lyric string, refs []refLine, textIdx []int, last int) (int, float64) {
	next := last + 1
	best, bestScore := noMatch, -1.0
	for _, i := range textIdx {
		s := e.oracle.Score(lyric, refs[i].text)
		switch {
		case best == noMatch || s > bestScore+scoreTieTolerance:
		case math.Abs(s-bestScore) <= scoreTieTolerance && closer(i, best, next, last):
		default:
			continue
		}
		best, bestScore = i, s
	}
	return best, bestScore
}

func closer(i, j, next, last int) bool {
	iFwd, jFwd := i >= last, j >= last
	if iFwd != jFwd {
		return iFwd
	}
	return abs(i-next) < abs(j-next)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Transcribe moves chords from the source lyric onto the reference lyric.
// Columns scale by the length ratio and then snap back to the start of the
// word they land in.
func Transcribe(chords song.ChordLine, srcLyric, refLyric string) song.ChordLine {
	src := []rune(srcLyric)
	ref := []rune(refLyric)
	out := make(song.ChordLine, 0, len(chords))
	for _, p := range chords {
		col := p.Column
		if len(src) > 0 && len(src) != len(ref) {
			col = int(math.Round(float64(col) * float64(len(ref)) / float64(len(src))))
		}
		out = append(out, song.Placement{Column: snapToWord(ref, col), Chord: p.Chord})
	}
	return out.Normalize()
}

func snapToWord(ref []rune, col int) int {
	if col >= len(ref) {
		return col
	}
	for col > 0 && ref[col-1] != ' ' {
		col--
	}
	return col
}

type placed struct {
	line   song.AlignedLine
	score  float64
	refSec int
	srcSec int
	name   song.SectionName
}

// layout interleaves reference lines with chord-only rows, each inserted
// after the match that preceded it in the source.
func layout(refs []refLine, chords []song.ChordLine, scores []float64, inserts map[int][]classify.Pair, sourceSection []int) []placed {
	var lines []placed
	addInserts := func(after, refSec int) {
		for _, p := range inserts[after] {
			lines = append(lines, placed{
				line:   song.AlignedLine{Chords: p.Chords},
				refSec: refSec,
				srcSec: p.SectionIndex,
				name:   p.Section,
			})
		}
	}
	if len(refs) > 0 {
		addInserts(noMatch, refs[0].section)
	}
	for i, r := range refs {
		lines = append(lines, placed{
			line:   song.AlignedLine{Text: r.text, Chords: chords[i]},
			score:  scores[i],
			refSec: r.section,
			srcSec: sourceSection[i],
		})
		addInserts(i, r.section)
	}
	return lines
}

// group folds placed lines into sections. With source section markers the
// sections follow the source, otherwise the reference. An unmatched line
// joins the section of the next matched line, or the last one at the end.
func group(ref song.Song, lines []placed, names map[int]song.SectionName, markers bool) [][]placed {
	key := make([]int, len(lines))
	if markers {
		next := noMatch
		for i := len(lines) - 1; i >= 0; i-- {
			if lines[i].srcSec != noMatch {
				next = lines[i].srcSec
			}
			key[i] = next
		}
	}
	cur := noMatch
	for i := range lines {
		if !markers {
			key[i] = lines[i].refSec
			lines[i].name = ref.Sections[lines[i].refSec].Name
			continue
		}
		switch {
		case lines[i].srcSec != noMatch:
			cur = lines[i].srcSec
		case key[i] == noMatch:
			key[i] = cur
		}
		lines[i].name = names[key[i]]
	}
	var out [][]placed
	for i := range lines {
		if i == 0 || key[i] != key[i-1] {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], lines[i])
	}
	return out
}

func buildSong(ref song.Song, groups [][]placed) song.Song {
	out := song.Song{
		Title:    ref.Title,
		Artist:   ref.Artist,
		Key:      ref.Key,
		Metadata: ref.Metadata,
		Sections: make([]song.Section, 0, len(groups)),
	}
	for _, g := range groups {
		sec := song.Section{Name: g[0].name}
		for _, p := range g {
			sec.Lines = append(sec.Lines, p.line)
		}
		out.Sections = append(out.Sections, sec)
	}
	if out.Key == "" {
		out.Key = song.InferKey(out)
	}
	return out
}

// strongSection reports a section with enough lyric words and enough
// confidently matched chord lines to publish on its own.
func strongSection(groups [][]placed) bool {
	for _, g := range groups {
		words, strong := 0, 0
		for _, p := range g {
			words += len(textnorm.Words(p.line.Text))
			if len(p.line.Chords) > 0 && p.line.HasText() && p.score >= strongLineScore {
				strong++
			}
		}
		if words >= strongSectionWords && strong >= strongSectionLines {
			return true
		}
	}
	return false
}
