package cli

import (
	"github.com/spf13/pflag"

	"songbook/internal/config"
)

// batchFlags are shared by the batch commands.
type batchFlags struct {
	Song    string
	DryRun  bool
	Out     string
	Workers int
}

func bindBatchFlags(fs *pflag.FlagSet, f *batchFlags, cfg config.Config) {
	fs.StringVar(&f.Song, "song", "", "Process only this slug")
	fs.BoolVarP(&f.DryRun, "dry-run", "d", false, "Report outcomes without writing outputs")
	fs.StringVarP(&f.Out, "out", "o", cfg.OutDir, "Output directory")
	fs.IntVarP(&f.Workers, "workers", "w", cfg.Workers, "Songs processed in parallel")
}

func (f batchFlags) validate() error {
	if f.Workers < 1 {
		return usageError{msg: "workers must be at least 1"}
	}
	if f.Out == "" {
		return usageError{msg: "output directory must not be empty"}
	}
	return nil
}
