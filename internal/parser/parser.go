// Package parser turns a single song page into a song.Song.
//
// Pages come in a few DOM shapes: text directly inside <pre>, one <span> per
// line separated by <br> inside <pre><font>, a mix of the two, or no <pre> at
// all. The shape is tagged first and each block is then extracted the way
// its shape needs. When a page has several blocks the best scoring one wins.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"songbook/internal/classify"
	"songbook/internal/song"
	"songbook/internal/textnorm"
)

// ErrParse marks a page whose structure yielded no usable lines. The song is
// still returned, with sentinels where needed.
var ErrParse = errors.New("unrecognised song page")

// Shape tags the DOM layout of a page.
type Shape string

const (
	ShapeText     Shape = "text"
	ShapePlainPre Shape = "pre"
	ShapeSpanPre  Shape = "pre-spans"
	ShapeMixed    Shape = "mixed"
	ShapeNoPre    Shape = "no-pre"
)

// Report records what was extracted from one page.
type Report struct {
	Shape  Shape `json:"shape"`
	Title  bool  `json:"title"`
	Artist bool  `json:"artist"`
	Chords bool  `json:"chords"`
	Lines  bool  `json:"lines"`
	Blocks int   `json:"blocks"`
	Err    error `json:"-"`
}

// Warning is the report's error text, empty when the page parsed cleanly.
func (r Report) Warning() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

var htmlSniff = regexp.MustCompile(`(?i)<\s*(!doctype|html|head|body|title|pre|div|p|br|span|font|table)\b`)

// Parse sniffs raw and parses it as HTML or as a plain chord-over-lyric block.
func Parse(raw []byte, contentType string) (song.Song, Report) {
	if htmlSniff.Match(raw) {
		return ParseHTML(raw, contentType)
	}
	return ParseText(string(raw))
}

// ParseText parses a plain chord-over-lyric block.
func ParseText(text string) (song.Song, Report) {
	rep := Report{Shape: ShapeText, Blocks: 1}
	block := classify.Build(textnorm.SplitText(text))
	s := assemble(block, "", "", &rep)
	return s, rep
}

// ParseHTML parses an HTML song page.
func ParseHTML(raw []byte, contentType string) (song.Song, Report) {
	rep := Report{}
	doc, err := textnorm.DecodeHTML(bytes.NewReader(raw), contentType)
	if err != nil {
		rep.Err = fmt.Errorf("%w: %v", ErrParse, err)
		s := assemble(classify.Block{}, "", "", &rep)
		return s, rep
	}
	title, artist := titleFromHead(doc)
	blocks := extractBlocks(doc)
	rep.Shape = documentShape(blocks)
	rep.Blocks = len(blocks)

	best := pickBlock(blocks)
	if best == nil {
		body := textnorm.Find(doc, atom.Body)
		if body == nil {
			body = doc
		}
		b := classify.Build(textnorm.VisualLines(body))
		best = &b
	}
	s := assemble(*best, title, artist, &rep)
	return s, rep
}

type block struct {
	shape Shape
	lines []textnorm.Line
	body  classify.Block
}

// score favours blocks that look like chord sheets.
func (b block) score() int {
	return b.body.ChordRows*2 + b.body.LyricPairs()
}

func extractBlocks(doc *html.Node) []block {
	var out []block
	for _, pre := range textnorm.FindAll(doc, atom.Pre) {
		if insidePre(pre) {
			continue
		}
		b := block{shape: preShape(pre)}
		switch b.shape {
		case ShapePlainPre:
			b.lines = textnorm.SplitText(textnorm.TextContent(pre))
		default:
			b.lines = textnorm.VisualLines(pre)
		}
		b.body = classify.Build(b.lines)
		out = append(out, b)
	}
	return out
}

func insidePre(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.Pre {
			return true
		}
	}
	return false
}

// preShape tags one <pre>: text only, span-per-line, or both.
func preShape(pre *html.Node) Shape {
	var elements, lineText bool
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, direct bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.ElementNode:
				elements = true
				walk(c, false)
			case html.TextNode:
				if direct && strings.Contains(strings.TrimRight(c.Data, "\n"), "\n") {
					lineText = true
				}
			}
		}
	}
	walk(pre, true)
	switch {
	case !elements:
		return ShapePlainPre
	case lineText:
		return ShapeMixed
	default:
		return ShapeSpanPre
	}
}

func documentShape(blocks []block) Shape {
	if len(blocks) == 0 {
		return ShapeNoPre
	}
	shape := blocks[0].shape
	for _, b := range blocks[1:] {
		if b.shape != shape {
			return ShapeMixed
		}
	}
	return shape
}

func pickBlock(blocks []block) *classify.Block {
	best := -1
	for i, b := range blocks {
		if best < 0 || b.score() > blocks[best].score() {
			best = i
		}
	}
	if best < 0 || blocks[best].score() == 0 && len(blocks[best].body.Pairs) == 0 {
		return nil
	}
	return &blocks[best].body
}

var titleSuffixRE = regexp.MustCompile(`(?i)\s*[-–:]?\s*\b(lyrics\s+(and|&)\s+chords|chords\s+(and|&)\s+lyrics|chords|lyrics)\s*$`)

// titleFromHead reads "<Title> | <Artist>" from the <title> element.
func titleFromHead(doc *html.Node) (title, artist string) {
	el := textnorm.Find(doc, atom.Title)
	if el == nil {
		return "", ""
	}
	text := strings.Join(strings.Fields(textnorm.Clean(textnorm.TextContent(el))), " ")
	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(titleSuffixRE.ReplaceAllString(strings.TrimSpace(parts[i]), ""))
	}
	title = parts[0]
	if len(parts) > 1 {
		artist = parts[1]
	}
	return title, artist
}

// assemble fills title and artist from the body when the head had none,
// substitutes sentinels, and records what was found.
func assemble(b classify.Block, title, artist string, rep *Report) song.Song {
	meta := map[string]string{}
	for _, line := range b.Meta {
		if key, val, ok := classify.MetaValue(line); ok {
			if _, seen := meta[key]; !seen {
				meta[key] = val
			}
			continue
		}
		if title == "" {
			title = line
		}
	}
	if artist == "" {
		artist = meta["recorded_by"]
	}

	rep.Title = title != ""
	rep.Artist = artist != ""
	if title == "" {
		title = song.NoTitle
	}
	if artist == "" {
		artist = song.NoArtist
	}

	s := song.Song{
		Title:    title,
		Artist:   artist,
		Sections: classify.Sections(b.Pairs),
	}
	if s.Sections == nil {
		s.Sections = []song.Section{}
	}
	if len(meta) > 0 {
		s.Metadata = meta
	}
	rep.Chords = s.HasChords()
	rep.Lines = s.TextLineCount() > 0
	if rep.Chords {
		s.Key = song.InferKey(s)
	}
	if !rep.Lines && !rep.Chords && rep.Err == nil {
		rep.Err = fmt.Errorf("%w: no lyric or chord lines", ErrParse)
	}
	return s
}
