// Package batch runs the per-song pipelines over many songs with a bounded
// worker pool and tallies the outcome of each.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"songbook/internal/storage"
)

type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomePartial          Outcome = "partial"
	OutcomeParseFailure     Outcome = "parse-failure"
	OutcomeEligible         Outcome = "eligible"
	OutcomeIneligible       Outcome = "ineligible"
	OutcomeMissingReference Outcome = "missing-reference"
	OutcomeIOFailure        Outcome = "io-failure"
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeInvalidSlug      Outcome = "invalid-slug"
)

// Failed reports outcomes that mean the song produced nothing usable.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeParseFailure, OutcomeMissingReference, OutcomeIOFailure, OutcomeCancelled, OutcomeInvalidSlug:
		return true
	}
	return false
}

// Row is the outcome of one song.
type Row struct {
	Slug    string  `json:"slug"`
	Outcome Outcome `json:"outcome"`
	Title   string  `json:"title,omitempty"`
	Artist  string  `json:"artist,omitempty"`

	HasArtist bool `json:"artist_found"`
	HasTitle  bool `json:"title_found"`
	HasChords bool `json:"chords_found"`
	HasLines  bool `json:"lines_found"`

	Coverage        float64 `json:"coverage,omitempty"`
	Eligible        bool    `json:"eligible,omitempty"`
	GrassinessScore int     `json:"grassiness_score,omitempty"`
	GrassinessTier  string  `json:"grassiness_tier,omitempty"`
	Warning         string  `json:"warning,omitempty"`
	Error           string  `json:"error,omitempty"`

	// err is a failure the caller must see: unreadable input or an
	// unwritable output.
	err error
}

// Fail marks the row as failed with err. IO failures and cancellation are
// also returned from Run.
func (r *Row) Fail(outcome Outcome, err error) {
	r.Outcome = outcome
	r.Error = err.Error()
	if outcome == OutcomeIOFailure || outcome == OutcomeCancelled {
		r.err = err
	}
}

// Summary tallies one run.
type Summary struct {
	RunID     string          `json:"run_id"`
	Mode      string          `json:"mode"`
	DryRun    bool            `json:"dry_run"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration_ns"`
	Counts    map[Outcome]int `json:"counts"`
	Rows      []Row           `json:"rows"`
}

// Outcomes lists the outcomes present in the run, in order.
func (s Summary) Outcomes() []Outcome {
	keys := maps.Keys(s.Counts)
	slices.Sort(keys)
	return keys
}

// Failures counts rows with a failed outcome.
func (s Summary) Failures() int {
	n := 0
	for _, r := range s.Rows {
		if r.Outcome.Failed() {
			n++
		}
	}
	return n
}

// Entries converts rows into results index entries. Rows whose slug is
// invalid have no index key and are left out.
func (s Summary) Entries() []storage.Entry {
	out := make([]storage.Entry, 0, len(s.Rows))
	for _, r := range s.Rows {
		if r.Outcome == OutcomeInvalidSlug {
			continue
		}
		out = append(out, storage.Entry{
			Slug:            r.Slug,
			Mode:            s.Mode,
			Title:           r.Title,
			Artist:          r.Artist,
			Outcome:         string(r.Outcome),
			Coverage:        r.Coverage,
			Eligible:        r.Eligible,
			GrassinessScore: r.GrassinessScore,
			GrassinessTier:  r.GrassinessTier,
			RunID:           s.RunID,
			UpdatedAt:       s.StartedAt,
		})
	}
	return out
}

// Processor runs one song's pipeline.
type Processor interface {
	Mode() string
	Process(ctx context.Context, slug string) Row
}

type Options struct {
	Workers int
	DryRun  bool
	// Index receives one entry per song unless DryRun is set.
	Index  *storage.Index
	Logger *slog.Logger
}

const defaultWorkers = 4

// Run processes every slug. Songs run in parallel, each song's pipeline
// runs sequentially. Per-song failures are recorded as rows; IO failures and
// cancellation are also joined into the returned error.
func Run(ctx context.Context, slugs []string, p Processor, opts Options) (Summary, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sum := Summary{
		RunID:     uuid.NewString(),
		Mode:      p.Mode(),
		DryRun:    opts.DryRun,
		StartedAt: time.Now().UTC(),
		Counts:    map[Outcome]int{},
	}

	rows := make([]Row, 0, len(slugs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for _, s := range slugs {
		slug := s
		wg.Add(1)
		go func() {
			defer wg.Done()
			row := runOne(ctx, sem, p, slug)
			logger.Debug("song processed", "run", sum.RunID, "slug", slug, "outcome", row.Outcome)
			mu.Lock()
			rows = append(rows, row)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(rows, func(i, j int) bool { return rows[i].Slug < rows[j].Slug })
	var errs []error
	for _, r := range rows {
		sum.Counts[r.Outcome]++
		if r.err != nil && !errors.Is(r.err, context.Canceled) && !errors.Is(r.err, context.DeadlineExceeded) {
			errs = append(errs, fmt.Errorf("%s: %w", r.Slug, r.err))
		}
	}
	sum.Rows = rows
	sum.Duration = time.Since(sum.StartedAt)

	if !opts.DryRun {
		if err := opts.Index.Upsert(context.WithoutCancel(ctx), sum.Entries()); err != nil {
			errs = append(errs, fmt.Errorf("update results index: %w", err))
		}
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return sum, errors.Join(errs...)
}

func runOne(ctx context.Context, sem chan struct{}, p Processor, slug string) Row {
	if err := storage.CheckSlug(slug); err != nil {
		row := Row{Slug: slug}
		row.Fail(OutcomeInvalidSlug, err)
		return row
	}
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		row := Row{Slug: slug}
		row.Fail(OutcomeCancelled, ctx.Err())
		return row
	}
	defer func() { <-sem }()

	if err := ctx.Err(); err != nil {
		row := Row{Slug: slug}
		row.Fail(OutcomeCancelled, err)
		return row
	}
	row := p.Process(ctx, slug)
	row.Slug = slug
	if row.err != nil && (errors.Is(row.err, context.Canceled) || errors.Is(row.err, context.DeadlineExceeded)) {
		row.Outcome = OutcomeCancelled
	}
	return row
}
