package cli

import (
	"fmt"
	"strings"

	"songbook/internal/batch"
)

func (a *app) printSummary(sum batch.Summary) error {
	if a.flags.JSON {
		return a.out.EmitJSON(sum)
	}
	rows := [][]string{{"SLUG", "OUTCOME", "TITLE", "FOUND", "COVERAGE", "GRASSINESS", "ERROR"}}
	for _, r := range sum.Rows {
		rows = append(rows, []string{
			r.Slug,
			a.out.Status(string(r.Outcome), r.Outcome.Failed(), r.Outcome == batch.OutcomePartial || r.Outcome == batch.OutcomeIneligible),
			r.Title,
			found(r),
			coverage(r),
			grassinessCell(r),
			firstNonEmpty(r.Error, r.Warning),
		})
	}
	a.out.Table(rows)

	counts := make([]string, 0, len(sum.Counts))
	for _, o := range sum.Outcomes() {
		counts = append(counts, fmt.Sprintf("%s %d", o, sum.Counts[o]))
	}
	line := fmt.Sprintf("%s run %s: %d songs (%s)", sum.Mode, sum.RunID, len(sum.Rows), strings.Join(counts, ", "))
	if sum.DryRun {
		line += " [dry run]"
	}
	if sum.Failures() > 0 {
		a.out.Warn(line)
	} else {
		a.out.Success(line)
	}
	return nil
}

func found(r batch.Row) string {
	var parts []string
	for _, f := range []struct {
		name string
		ok   bool
	}{{"artist", r.HasArtist}, {"title", r.HasTitle}, {"chords", r.HasChords}, {"lines", r.HasLines}} {
		if f.ok {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

func coverage(r batch.Row) string {
	switch r.Outcome {
	case batch.OutcomeEligible, batch.OutcomeIneligible:
		return fmt.Sprintf("%.0f%%", r.Coverage*100)
	}
	return "-"
}

func grassinessCell(r batch.Row) string {
	if r.GrassinessTier == "" {
		return "-"
	}
	return fmt.Sprintf("%d %s", r.GrassinessScore, r.GrassinessTier)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
