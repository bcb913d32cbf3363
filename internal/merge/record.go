package merge

import "songbook/internal/song"

// Metrics summarises coverage for the published record.
type Metrics struct {
	Coverage     float64 `json:"coverage"`
	TotalLines   int     `json:"total_lines"`
	MatchedLines int     `json:"matched_lines"`
	Eligible     bool    `json:"eligible"`
}

// Record is the merge result document written next to the ChordPro file.
type Record struct {
	Slug     string         `json:"bl_slug"`
	Title    string         `json:"title"`
	UGURL    string         `json:"ug_url"`
	ChordPro string         `json:"chordpro"`
	Metrics  Metrics        `json:"metrics"`
	Sections []song.Section `json:"sections"`
}

func NewRecord(slug, ugURL, chordpro string, res Result) Record {
	return Record{
		Slug:     slug,
		Title:    res.Song.Title,
		UGURL:    ugURL,
		ChordPro: chordpro,
		Metrics: Metrics{
			Coverage:     res.Coverage,
			TotalLines:   res.TotalLines,
			MatchedLines: res.MatchedLines,
			Eligible:     res.Eligible,
		},
		Sections: res.Song.Sections,
	}
}
