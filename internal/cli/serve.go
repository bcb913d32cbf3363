package cli

import (
	"github.com/spf13/cobra"

	"songbook/internal/server"
	"songbook/internal/storage"
)

func newServeCmd(a *app) *cobra.Command {
	addr := a.cfg.Addr
	out := a.cfg.OutDir
	catalog := a.cfg.Catalog
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve parsed and merged songs over a read-only HTTP API",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scorer, err := a.loadScorer(catalog)
			if err != nil {
				return err
			}
			idx, err := a.openIndex(false)
			if err != nil {
				return err
			}
			defer idx.Close()
			if idx == nil {
				a.out.Warn("results index is off: /songs will answer 503")
			}
			srv := server.New(server.Options{
				Index:   idx,
				Outputs: storage.NewOutputs(out),
				Scorer:  scorer,
			})
			a.out.Info("Serving " + out + " on " + addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&addr, "addr", addr, "Listen address")
	fs.StringVarP(&out, "out", "o", out, "Output directory to serve")
	fs.StringVar(&catalog, "catalog", catalog, "Grassiness catalog JSON")
	return cmd
}
