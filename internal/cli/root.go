// Package cli is the songbook command tree.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"songbook/internal/config"
	"songbook/internal/grassiness"
	"songbook/internal/output"
	"songbook/internal/storage"
)

const version = "1.0.0"

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// IsUsage reports whether err is a command line mistake rather than a
// runtime failure.
func IsUsage(err error) bool {
	var ue usageError
	return errors.As(err, &ue)
}

type rootFlags struct {
	JSON    bool
	Plain   bool
	Quiet   bool
	Verbose bool
	Debug   bool
	NoColor bool
	DB      string
}

// app carries what every command needs once flags are parsed.
type app struct {
	cfg   config.Config
	flags rootFlags
	out   *output.Output

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Streams overrides the process streams, for tests.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Execute runs the command line in args.
func Execute(ctx context.Context, args []string) error {
	return ExecuteWith(ctx, args, Streams{})
}

func ExecuteWith(ctx context.Context, args []string, streams Streams) error {
	a := &app{
		cfg:    config.Load(),
		stdin:  streams.Stdin,
		stdout: streams.Stdout,
		stderr: streams.Stderr,
	}
	if a.stdin == nil {
		a.stdin = os.Stdin
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	err := root.ExecuteContext(ctx)
	if err != nil && strings.HasPrefix(err.Error(), "unknown command") {
		return usageError{msg: err.Error()}
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "songbook",
		Short:         "Bluegrass songbook builder",
		Long:          "Parse chord pages into ChordPro, merge chords onto reference lyrics, and score titles for grassiness.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	bindRootFlags(root.PersistentFlags(), &a.flags, a.cfg)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{msg: err.Error() + "\n(run with --help for usage)"}
	})

	root.AddCommand(
		newParseCmd(a),
		newMergeCmd(a),
		newGrassinessCmd(a),
		newServeCmd(a),
	)
	return root
}

func bindRootFlags(fs *pflag.FlagSet, f *rootFlags, cfg config.Config) {
	fs.BoolVar(&f.JSON, "json", false, "Output machine-readable JSON")
	fs.BoolVar(&f.Plain, "plain", false, "Disable decorative formatting")
	fs.BoolVarP(&f.Quiet, "quiet", "q", false, "Suppress non-essential output")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Enable verbose diagnostics")
	fs.BoolVar(&f.Debug, "debug", false, "Emit structured debug logs to stderr")
	fs.BoolVar(&f.NoColor, "no-color", false, "Disable colored output")
	fs.StringVar(&f.DB, "db", cfg.IndexPath(), `Results index path ("off" disables)`)
}

func (a *app) setup() error {
	if a.flags.Debug {
		enableDebugLoggingTo(a.stderr)
	}
	a.out = output.New(output.Options{
		JSON:    a.flags.JSON,
		Plain:   a.flags.Plain,
		Quiet:   a.flags.Quiet,
		Verbose: a.flags.Verbose,
		NoColor: a.flags.NoColor || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb",
		Stdout:  a.stdout,
		Stderr:  a.stderr,
	})
	a.cfg.DB = a.flags.DB
	return nil
}

// openIndex opens the results index unless it is off or the run is dry.
func (a *app) openIndex(dryRun bool) (*storage.Index, error) {
	if dryRun {
		return nil, nil
	}
	return storage.OptionalIndex(a.cfg.IndexPath())
}

func (a *app) loadScorer(path string) (*grassiness.Scorer, error) {
	store, err := grassiness.NewCatalogStore(path)
	if err != nil {
		return nil, err
	}
	cat, err := store.Load()
	if err != nil {
		return nil, err
	}
	a.out.Debug("grassiness catalog: " + store.Path())
	return grassiness.NewScorer(cat), nil
}
