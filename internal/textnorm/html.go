package textnorm

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
)

// DecodeHTML parses a page, transcoding to UTF-8 from the charset named by
// contentType, a <meta> tag or a BOM.
func DecodeHTML(r io.Reader, contentType string) (*html.Node, error) {
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}
	doc, err := html.Parse(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.Tr: true, atom.Table: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Pre: true, atom.Blockquote: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Hr: true, atom.Dd: true, atom.Dt: true, atom.Title: true,
}

var skipElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
	atom.Head: true, atom.Iframe: true,
}

type lineBuilder struct {
	lines []string
	cur   strings.Builder
}

func (b *lineBuilder) push() {
	b.lines = append(b.lines, b.cur.String())
	b.cur.Reset()
}

// softBreak ends the current line only if it has content.
func (b *lineBuilder) softBreak() {
	if b.cur.Len() > 0 {
		b.push()
	}
}

func (b *lineBuilder) verbatim(s string) {
	for i, part := range strings.Split(s, "\n") {
		if i > 0 {
			b.push()
		}
		b.cur.WriteString(part)
	}
}

// flow writes text the way a browser lays out non-preformatted content: runs
// of ASCII whitespace collapse to one space. Non-breaking spaces survive
// until Clean maps them, so spacer runs built from &nbsp; keep their width.
func (b *lineBuilder) flow(s string) {
	collapsed := strings.Join(strings.FieldsFunc(s, isHTMLSpace), " ")
	if collapsed == "" {
		if len(s) > 0 {
			b.space()
		}
		return
	}
	if isHTMLSpace(rune(s[0])) {
		b.space()
	}
	b.cur.WriteString(collapsed)
	if isHTMLSpace(rune(s[len(s)-1])) {
		b.space()
	}
}

// space writes one separating space unless the line is empty or already
// ends in one.
func (b *lineBuilder) space() {
	cur := b.cur.String()
	if cur == "" || strings.HasSuffix(cur, " ") {
		return
	}
	b.cur.WriteByte(' ')
}

func isHTMLSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

// VisualLines walks n in document order and returns lines in visual order:
// <br> and block elements break lines, <pre> content is copied verbatim.
func VisualLines(n *html.Node) []Line {
	b := &lineBuilder{}
	walkVisual(b, n, false)
	b.softBreak()
	out := make([]Line, 0, len(b.lines))
	for _, l := range b.lines {
		out = append(out, NewLine(Clean(l)))
	}
	return out
}

func walkVisual(b *lineBuilder, n *html.Node, inPre bool) {
	switch n.Type {
	case html.TextNode:
		if inPre {
			b.verbatim(n.Data)
		} else {
			b.flow(n.Data)
		}
		return
	case html.ElementNode:
		if skipElements[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Br {
			b.push()
			return
		}
	}
	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		b.softBreak()
	}
	pre := inPre || n.DataAtom == atom.Pre
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkVisual(b, c, pre)
	}
	if block {
		b.softBreak()
	}
}

// FindAll returns every element with the given tag in document order.
func FindAll(n *html.Node, tag atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(x *html.Node) {
		if x.Type == html.ElementNode && x.DataAtom == tag {
			out = append(out, x)
		}
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Find returns the first element with the given tag, or nil.
func Find(n *html.Node, tag atom.Atom) *html.Node {
	all := FindAll(n, tag)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// TextContent concatenates all descendant text.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(x *html.Node) {
		if x.Type == html.TextNode {
			b.WriteString(x.Data)
		}
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
