// Package storage persists songbook outputs: per-slug ChordPro and merge
// records, the raw HTML cache and the SQLite results index.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var defaultDir string

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		defaultDir = "."
		return
	}
	defaultDir = filepath.Join(home, ".songbook")
}

// DefaultDir is the base directory used when no output or cache directory
// is configured.
func DefaultDir() string { return defaultDir }

var ErrBadSlug = errors.New("invalid slug")

var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// CheckSlug rejects slugs that could escape the output directory.
func CheckSlug(slug string) error {
	if !slugRe.MatchString(slug) || slug == "." || slug == ".." {
		return fmt.Errorf("%w: %q", ErrBadSlug, slug)
	}
	return nil
}

const (
	ChordProExt = ".pro"
	RecordExt   = ".merge.json"
	SongExt     = ".song.json"
)

// Outputs writes one set of files per slug. Each song writes only to paths
// keyed by its own slug, so parallel workers never share a file.
type Outputs struct {
	dir string
}

func NewOutputs(dir string) *Outputs {
	if dir == "" {
		dir = filepath.Join(defaultDir, "out")
	}
	return &Outputs{dir: dir}
}

func (o *Outputs) Dir() string { return o.dir }

func (o *Outputs) path(slug, ext string) (string, error) {
	if err := CheckSlug(slug); err != nil {
		return "", err
	}
	return filepath.Join(o.dir, slug+ext), nil
}

// WriteChordPro writes <dir>/<slug>.pro.
func (o *Outputs) WriteChordPro(slug, text string) error {
	p, err := o.path(slug, ChordProExt)
	if err != nil {
		return err
	}
	return writeFileAtomic(p, []byte(text), 0o644)
}

// WriteJSON writes v as indented JSON to <dir>/<slug><ext>.
func (o *Outputs) WriteJSON(slug, ext string, v any) error {
	p, err := o.path(slug, ext)
	if err != nil {
		return err
	}
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(p, append(buf, '\n'), 0o644)
}

// ReadChordPro returns the ChordPro text for slug.
func (o *Outputs) ReadChordPro(slug string) ([]byte, error) {
	p, err := o.path(slug, ChordProExt)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// ReadJSON decodes <dir>/<slug><ext> into v.
func (o *Outputs) ReadJSON(slug, ext string, v any) error {
	p, err := o.path(slug, ext)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(p), err)
	}
	return nil
}
