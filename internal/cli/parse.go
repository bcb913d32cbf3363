package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"songbook/internal/batch"
	"songbook/internal/storage"
)

type parseOptions struct {
	batchFlags
	Input   string
	Catalog string
}

func newParseCmd(a *app) *cobra.Command {
	opts := parseOptions{Input: ".", Catalog: a.cfg.Catalog}
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse chord pages (<slug>.html) into ChordPro",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(cmd, opts)
		},
	}
	fs := cmd.Flags()
	bindBatchFlags(fs, &opts.batchFlags, a.cfg)
	fs.StringVarP(&opts.Input, "input", "i", opts.Input, "Directory of <slug>.html pages, or one page")
	fs.StringVar(&opts.Catalog, "catalog", opts.Catalog, "Grassiness catalog JSON")
	_ = cmd.RegisterFlagCompletionFunc("song", slugCompletions(&opts.Input, batch.HTMLExt))
	return cmd
}

func (a *app) runParse(cmd *cobra.Command, opts parseOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	dir, only, err := resolveInput(opts.Input, opts.Song)
	if err != nil {
		return err
	}
	slugs, err := batch.ListSlugs(dir, batch.HTMLExt, only)
	if err != nil {
		return usageError{msg: err.Error()}
	}
	scorer, err := a.loadScorer(opts.Catalog)
	if err != nil {
		return err
	}
	idx, err := a.openIndex(opts.DryRun)
	if err != nil {
		return err
	}
	defer idx.Close()

	job := &batch.ParseJob{
		InputDir: dir,
		Outputs:  storage.NewOutputs(opts.Out),
		Cache:    storage.NewCache(a.cacheDir(opts.Out)),
		Scorer:   scorer,
		DryRun:   opts.DryRun,
	}
	a.out.Debug("parsing " + dir)
	sum, runErr := batch.Run(cmd.Context(), slugs, job, batch.Options{
		Workers: opts.Workers,
		DryRun:  opts.DryRun,
		Index:   idx,
	})
	if err := a.printSummary(sum); err != nil {
		return err
	}
	return runErr
}

// resolveInput accepts a directory or a single <slug>.html file.
func resolveInput(input, song string) (dir, only string, err error) {
	info, err := os.Stat(input)
	if err != nil {
		return "", "", usageError{msg: "input not found: " + input}
	}
	if info.IsDir() {
		return input, song, nil
	}
	base := filepath.Base(input)
	if !strings.HasSuffix(base, batch.HTMLExt) {
		return "", "", usageError{msg: "input file must end in " + batch.HTMLExt}
	}
	slug := strings.TrimSuffix(base, batch.HTMLExt)
	if song != "" && song != slug {
		return "", "", usageError{msg: "--song " + song + " does not match input " + base}
	}
	return filepath.Dir(input), slug, nil
}

// cacheDir keeps the raw page cache next to outputs written to a
// non-default directory.
func (a *app) cacheDir(out string) string {
	if out != a.cfg.OutDir {
		return filepath.Join(out, "cache")
	}
	return a.cfg.CacheDir
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError{msg: "unexpected arguments: " + strings.Join(args, " ") + "\n(run with --help for usage)"}
	}
	return nil
}
