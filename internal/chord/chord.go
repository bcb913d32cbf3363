// Package chord recognises chord symbols such as G7, Asus4 or Bb/F# in
// monospaced chord rows.
package chord

import (
	"fmt"
	"regexp"
	"strings"
)

// surfaceRE matches a whole chord surface: root, accidental, quality,
// extension, suspension and an optional slash bass.
var surfaceRE = regexp.MustCompile(`^([A-G])([#b♯♭]?)(maj|min|dim|aug|sus|add|m)?(13|11|2|3|4|5|6|7|9)?(sus[24])?(?:/([A-G])([#b♯♭]?))?$`)

// Token is an immutable parsed chord symbol. The zero value is not a chord.
type Token struct {
	surface    string
	root       string
	accidental string
	quality    string
	extension  string
	sus        string
	bass       string
}

// Parse returns the token for s, or false when s is not a chord surface.
func Parse(s string) (Token, bool) {
	m := surfaceRE.FindStringSubmatch(s)
	if m == nil {
		return Token{}, false
	}
	return Token{
		surface:    s,
		root:       m[1],
		accidental: normalizeAccidental(m[2]),
		quality:    m[3],
		extension:  m[4],
		sus:        m[5],
		bass:       joinBass(m[6], normalizeAccidental(m[7])),
	}, true
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Token {
	t, ok := Parse(s)
	if !ok {
		panic(fmt.Sprintf("chord: invalid surface %q", s))
	}
	return t
}

// IsChord reports whether s is exactly one chord surface.
func IsChord(s string) bool {
	return surfaceRE.MatchString(s)
}

func normalizeAccidental(a string) string {
	switch a {
	case "♯":
		return "#"
	case "♭":
		return "b"
	}
	return a
}

func joinBass(root, acc string) string {
	if root == "" {
		return ""
	}
	return root + acc
}

func (t Token) String() string     { return t.surface }
func (t Token) IsZero() bool       { return t.surface == "" }
func (t Token) Root() string       { return t.root + t.accidental }
func (t Token) Quality() string    { return t.quality }
func (t Token) Extension() string  { return t.extension }
func (t Token) Sus() string        { return t.sus }
func (t Token) Bass() string       { return t.bass }
func (t Token) HasSlashBass() bool { return t.bass != "" }

// IsMinor reports a minor triad quality (m or min).
func (t Token) IsMinor() bool {
	return t.quality == "m" || t.quality == "min"
}

// Equal compares surfaces.
func (t Token) Equal(o Token) bool { return t.surface == o.surface }

// MarshalText renders the surface form so tokens serialise as plain strings.
func (t Token) MarshalText() ([]byte, error) {
	return []byte(t.surface), nil
}

// UnmarshalText parses a surface form.
func (t *Token) UnmarshalText(b []byte) error {
	p, ok := Parse(strings.TrimSpace(string(b)))
	if !ok {
		return fmt.Errorf("invalid chord %q", string(b))
	}
	*t = p
	return nil
}
