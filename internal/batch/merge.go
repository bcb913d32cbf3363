package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"songbook/internal/chordpro"
	"songbook/internal/grassiness"
	"songbook/internal/merge"
	"songbook/internal/song"
	"songbook/internal/storage"
)

// MergeJob merges <sources>/<slug>.txt chord blocks onto <refs>/<slug>.json
// references. An optional <sources>/<slug>.url names the chord source.
type MergeJob struct {
	RefsDir    string
	SourcesDir string
	Engine     *merge.Engine
	Outputs    *storage.Outputs
	Scorer     *grassiness.Scorer
	DryRun     bool
}

func (j *MergeJob) Mode() string { return "merge-" + string(j.Engine.Mode()) }

func (j *MergeJob) Process(ctx context.Context, slug string) Row {
	row := Row{Slug: slug}
	rawRef, err := os.ReadFile(filepath.Join(j.RefsDir, slug+RefExt))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			row.Fail(OutcomeMissingReference, merge.ErrMissingReference)
			return row
		}
		row.Fail(OutcomeIOFailure, err)
		return row
	}
	ref, err := song.ParseReferenceJSON(rawRef)
	if err != nil {
		row.Fail(OutcomeMissingReference, err)
		return row
	}
	source, err := os.ReadFile(filepath.Join(j.SourcesDir, slug+SourceExt))
	if err != nil {
		row.Fail(OutcomeIOFailure, err)
		return row
	}
	ugURL, err := readSidecar(filepath.Join(j.SourcesDir, slug+URLExt))
	if err != nil {
		row.Fail(OutcomeIOFailure, err)
		return row
	}

	res, rec, err := MergeOne(j.Engine, slug, ugURL, ref, string(source))
	row.Title, row.Artist = ref.Title, ref.Artist
	row.HasTitle = ref.Title != "" && ref.Title != song.NoTitle
	row.HasArtist = ref.Artist != "" && ref.Artist != song.NoArtist
	if err != nil {
		row.Fail(OutcomeMissingReference, err)
		return row
	}
	row.HasChords = res.MatchedLines > 0
	row.HasLines = res.TotalLines > 0
	row.Coverage = res.Coverage
	row.Eligible = res.Eligible
	row.Warning = res.Warning
	row.Outcome = OutcomeIneligible
	if res.Eligible {
		row.Outcome = OutcomeEligible
	}
	if j.Scorer != nil && row.HasTitle {
		g := j.Scorer.Score(ref.Title)
		row.GrassinessScore, row.GrassinessTier = g.Score, string(g.Tier)
	}

	if err := ctx.Err(); err != nil {
		row.Fail(OutcomeCancelled, err)
		return row
	}
	if j.DryRun {
		return row
	}
	if err := j.Outputs.WriteChordPro(slug, rec.ChordPro); err != nil {
		row.Fail(OutcomeIOFailure, err)
		return row
	}
	if err := j.Outputs.WriteJSON(slug, storage.RecordExt, rec); err != nil {
		row.Fail(OutcomeIOFailure, err)
	}
	return row
}

// MergeOne merges one source onto ref and builds its published record.
func MergeOne(engine *merge.Engine, slug, ugURL string, ref song.Song, source string) (merge.Result, merge.Record, error) {
	res, err := engine.Merge(ref, source)
	if err != nil {
		return merge.Result{}, merge.Record{}, err
	}
	return res, merge.NewRecord(slug, ugURL, chordpro.Emit(res.Song), res), nil
}

func readSidecar(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
