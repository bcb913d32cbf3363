package batch

import (
	"context"
	"os"
	"path/filepath"

	"songbook/internal/chordpro"
	"songbook/internal/grassiness"
	"songbook/internal/parser"
	"songbook/internal/storage"
)

// ParseJob parses <dir>/<slug>.html pages into songs.
type ParseJob struct {
	InputDir string
	Outputs  *storage.Outputs
	Cache    *storage.Cache
	Scorer   *grassiness.Scorer
	DryRun   bool
}

func (j *ParseJob) Mode() string { return "parse" }

func (j *ParseJob) Process(ctx context.Context, slug string) Row {
	row := Row{Slug: slug}
	raw, err := os.ReadFile(filepath.Join(j.InputDir, slug+HTMLExt))
	if err != nil {
		row.Fail(OutcomeIOFailure, err)
		return row
	}
	if j.Cache != nil && !j.DryRun {
		if _, err := j.Cache.Put(slug, raw); err != nil {
			row.Fail(OutcomeIOFailure, err)
			return row
		}
	}

	s, rep := parser.Parse(raw, "")
	row.Title, row.Artist = s.Title, s.Artist
	row.HasTitle, row.HasArtist = rep.Title, rep.Artist
	row.HasChords, row.HasLines = rep.Chords, rep.Lines
	row.Warning = rep.Warning()
	switch {
	case rep.Err != nil:
		row.Outcome = OutcomeParseFailure
	case rep.Title && rep.Artist && rep.Chords && rep.Lines:
		row.Outcome = OutcomeOK
	default:
		row.Outcome = OutcomePartial
	}
	if j.Scorer != nil && rep.Title {
		g := j.Scorer.Score(s.Title)
		row.GrassinessScore, row.GrassinessTier = g.Score, string(g.Tier)
	}

	if err := ctx.Err(); err != nil {
		row.Fail(OutcomeCancelled, err)
		return row
	}
	if j.DryRun {
		return row
	}
	if err := j.Outputs.WriteChordPro(slug, chordpro.Emit(s)); err != nil {
		row.Fail(OutcomeIOFailure, err)
		return row
	}
	if err := j.Outputs.WriteJSON(slug, storage.SongExt, s); err != nil {
		row.Fail(OutcomeIOFailure, err)
	}
	return row
}
