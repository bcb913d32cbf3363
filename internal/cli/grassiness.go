package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"songbook/internal/grassiness"
)

func newGrassinessCmd(a *app) *cobra.Command {
	var catalog string
	var all bool
	cmd := &cobra.Command{
		Use:   "grassiness [TITLE...]",
		Short: "Score titles by how firmly they belong to the bluegrass canon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return usageError{msg: "pass one or more titles, or --all\n(run with --help for usage)"}
			}
			scorer, err := a.loadScorer(catalog)
			if err != nil {
				return err
			}
			var recs []grassiness.Record
			if all {
				recs = scorer.All()
			} else {
				for _, t := range args {
					recs = append(recs, scorer.Score(t))
				}
			}
			return a.printGrassiness(recs)
		},
	}
	cmd.PersistentFlags().StringVar(&catalog, "catalog", a.cfg.Catalog, "Grassiness catalog JSON")
	cmd.Flags().BoolVar(&all, "all", false, "Score every catalog title")
	cmd.AddCommand(newGrassinessAddCmd(a, &catalog))
	return cmd
}

func newGrassinessAddCmd(a *app, catalog *string) *cobra.Command {
	var title, artist, tag string
	var count int
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record recordings or tag votes for a title in the catalog",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" {
				return usageError{msg: "--title is required"}
			}
			if (artist == "") == (tag == "") {
				return usageError{msg: "pass exactly one of --artist or --tag"}
			}
			if count < 1 {
				return usageError{msg: "count must be at least 1"}
			}
			store, err := grassiness.NewCatalogStore(*catalog)
			if err != nil {
				return err
			}
			cat, err := store.Load()
			if err != nil {
				return err
			}
			if artist != "" {
				if _, known := grassiness.ArtistID(artist); !known {
					a.out.Warn("unknown artist " + artist + " carries no weight")
				}
				cat.Add(title, artist, count)
			} else {
				cat.AddTag(title, tag, count)
			}
			if err := store.Save(cat); err != nil {
				return err
			}
			rec := grassiness.NewScorer(cat).Score(title)
			if a.flags.JSON {
				return a.out.EmitJSON(rec)
			}
			a.out.Success(fmt.Sprintf("%s: %d %s (%s)", rec.NormalizedTitle, rec.Score, rec.Tier, store.Path()))
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&title, "title", "", "Song title")
	fs.StringVar(&artist, "artist", "", "Recording artist")
	fs.StringVar(&tag, "tag", "", "Community tag, e.g. bluegrass")
	fs.IntVarP(&count, "count", "n", 1, "Number of recordings or votes")
	return cmd
}

func (a *app) printGrassiness(recs []grassiness.Record) error {
	if a.flags.JSON {
		return a.out.EmitJSON(recs)
	}
	rows := [][]string{{"TITLE", "SCORE", "TIER", "EVIDENCE"}}
	for _, r := range recs {
		var ev []string
		for _, c := range r.Contributions {
			ev = append(ev, fmt.Sprintf("%s×%d=%d", c.Artist, c.Count, c.Points))
		}
		evidence := strings.Join(ev, " ")
		if evidence == "" {
			evidence = "-"
		}
		rows = append(rows, []string{r.NormalizedTitle, fmt.Sprint(r.Score), a.tier(r.Tier), evidence})
	}
	a.out.Table(rows)
	return nil
}

func (a *app) tier(t grassiness.Tier) string {
	switch t {
	case grassiness.TierStandard:
		return a.out.Green(string(t))
	case grassiness.TierLikely:
		return a.out.Yellow(string(t))
	case grassiness.TierNone:
		return a.out.Gray(string(t))
	}
	return string(t)
}
