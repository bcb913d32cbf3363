package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"songbook/internal/batch"
	"songbook/internal/merge"
	"songbook/internal/similarity"
	"songbook/internal/song"
	"songbook/internal/storage"
)

type mergeOptions struct {
	batchFlags
	Refs              string
	Sources           string
	Ref               string
	Source            string
	Semantic          bool
	EmbeddingsPath    string
	LexicalThreshold  float64
	SemanticThreshold float64
	Catalog           string
}

func newMergeCmd(a *app) *cobra.Command {
	opts := mergeOptions{
		EmbeddingsPath:    a.cfg.Embeddings,
		LexicalThreshold:  a.cfg.LexicalThreshold,
		SemanticThreshold: a.cfg.SemanticThreshold,
		Catalog:           a.cfg.Catalog,
	}
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge chord blocks onto reference lyrics",
		Long: "Batch mode reads <slug>.json references from --refs and <slug>.txt chord blocks from --sources.\n" +
			"Single mode merges --ref FILE.json with --source FILE.txt, or with stdin when --source is - or omitted.",
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMerge(cmd, opts)
		},
	}
	fs := cmd.Flags()
	bindBatchFlags(fs, &opts.batchFlags, a.cfg)
	fs.StringVar(&opts.Refs, "refs", "", "Directory of <slug>.json reference lyrics")
	fs.StringVar(&opts.Sources, "sources", "", "Directory of <slug>.txt chord blocks")
	fs.StringVar(&opts.Ref, "ref", "", "Single reference lyrics file")
	fs.StringVar(&opts.Source, "source", "", `Single chord block file ("-" for stdin)`)
	fs.BoolVar(&opts.Semantic, "embeddings", false, "Use the semantic (word embedding) similarity oracle")
	fs.StringVar(&opts.EmbeddingsPath, "embeddings-file", opts.EmbeddingsPath, "GloVe 50-d embeddings file")
	fs.Float64Var(&opts.LexicalThreshold, "lexical-threshold", opts.LexicalThreshold, "Match threshold for the lexical oracle")
	fs.Float64Var(&opts.SemanticThreshold, "semantic-threshold", opts.SemanticThreshold, "Match threshold for the semantic oracle")
	fs.StringVar(&opts.Catalog, "catalog", opts.Catalog, "Grassiness catalog JSON")
	_ = cmd.RegisterFlagCompletionFunc("song", slugCompletions(&opts.Sources, batch.SourceExt))
	return cmd
}

func (a *app) runMerge(cmd *cobra.Command, opts mergeOptions) error {
	engine, err := a.newEngine(opts)
	if err != nil {
		return err
	}
	if opts.Ref != "" {
		return a.runMergeOne(engine, opts)
	}
	if opts.Refs == "" || opts.Sources == "" {
		return usageError{msg: "merge needs --refs and --sources, or --ref for a single song\n(run with --help for usage)"}
	}
	if err := opts.validate(); err != nil {
		return err
	}
	slugs, err := batch.ListSlugs(opts.Sources, batch.SourceExt, opts.Song)
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

	job := &batch.MergeJob{
		RefsDir:    opts.Refs,
		SourcesDir: opts.Sources,
		Engine:     engine,
		Outputs:    storage.NewOutputs(opts.Out),
		Scorer:     scorer,
		DryRun:     opts.DryRun,
	}
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

func (a *app) newEngine(opts mergeOptions) (*merge.Engine, error) {
	a.cfg.LexicalThreshold = opts.LexicalThreshold
	a.cfg.SemanticThreshold = opts.SemanticThreshold
	if err := a.cfg.Validate(); err != nil {
		return nil, usageError{msg: err.Error()}
	}
	if !opts.Semantic {
		return merge.NewEngine(similarity.Lexical{}, merge.Options{Threshold: &opts.LexicalThreshold}), nil
	}
	if opts.EmbeddingsPath == "" {
		return nil, usageError{msg: "--embeddings needs --embeddings-file or SONGBOOK_EMBEDDINGS"}
	}
	emb := similarity.Shared(opts.EmbeddingsPath)
	if _, err := emb.Load(); err != nil {
		return nil, err
	}
	a.out.Debug("embeddings: " + opts.EmbeddingsPath)
	return merge.NewEngine(similarity.NewSemantic(emb), merge.Options{Threshold: &opts.SemanticThreshold}), nil
}

// runMergeOne merges a single reference and prints the ChordPro result, or
// the full result with --json.
func (a *app) runMergeOne(engine *merge.Engine, opts mergeOptions) error {
	rawRef, err := os.ReadFile(opts.Ref)
	if err != nil {
		return err
	}
	ref, err := song.ParseReferenceJSON(rawRef)
	if err != nil {
		return err
	}
	source, err := a.readSource(opts.Source)
	if err != nil {
		return err
	}
	slug := opts.Song
	if slug == "" {
		slug = song.Slugify(ref.Title)
	}
	res, rec, err := batch.MergeOne(engine, slug, "", ref, source)
	if err != nil {
		return err
	}
	if a.flags.JSON {
		return a.out.EmitJSON(struct {
			Record merge.Record `json:"record"`
			Drops  []merge.Drop `json:"drops,omitempty"`
			Scores []float64    `json:"scores"`
			Mode   string       `json:"mode"`
		}{rec, res.Drops, res.Scores, string(engine.Mode())})
	}
	a.out.Raw(rec.ChordPro)
	a.out.Debug(fmt.Sprintf("coverage %.0f%% (%d/%d lines), eligible=%t, %d dropped",
		res.Coverage*100, res.MatchedLines, res.TotalLines, res.Eligible, len(res.Drops)))
	if res.Warning != "" {
		a.out.Debug("warning: " + res.Warning)
	}
	return nil
}

// readSource reads the chord block from path, or from stdin for "-" or an
// empty path when stdin is piped.
func (a *app) readSource(path string) (string, error) {
	if path != "" && path != "-" {
		b, err := os.ReadFile(path)
		return string(b), err
	}
	if f, ok := a.stdin.(*os.File); ok && path == "" && term.IsTerminal(int(f.Fd())) {
		return "", usageError{msg: "no chord block: pass --source FILE or pipe one on stdin"}
	}
	b, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
