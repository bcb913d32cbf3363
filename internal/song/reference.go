package song

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseReferenceJSON decodes a reference lyric document. The canonical shape is
// a Song ({title, artist, sections[].lines[].text}); a flat {"lines": [...]}
// list of strings is accepted as a single anonymous section.
func ParseReferenceJSON(raw []byte) (Song, error) {
	var doc struct {
		Song
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Song{}, fmt.Errorf("decode reference: %w", err)
	}
	s := doc.Song
	if len(s.Sections) == 0 && len(doc.Lines) > 0 {
		sec := Section{}
		for _, l := range doc.Lines {
			sec.Lines = append(sec.Lines, AlignedLine{Text: l})
		}
		s.Sections = []Section{sec}
	}
	for si := range s.Sections {
		for li := range s.Sections[si].Lines {
			l := &s.Sections[si].Lines[li]
			l.Text = SanitizeLyric(strings.TrimRight(l.Text, " \t"))
		}
	}
	if strings.TrimSpace(s.Title) == "" {
		s.Title = NoTitle
	}
	if strings.TrimSpace(s.Artist) == "" {
		s.Artist = NoArtist
	}
	return s, nil
}
