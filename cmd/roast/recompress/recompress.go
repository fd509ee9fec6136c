// Package recompress implements `roast recompress`.
package recompress

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/flarebyte/roast/cmd/roast/options"
	"github.com/flarebyte/roast/internal/compress"
	"github.com/flarebyte/roast/internal/pipeline"
	"github.com/flarebyte/roast/internal/roast"
)

// NewCmd returns the recompress command.
func NewCmd(g *options.Globals) *cobra.Command {
	var (
		target, outdir, rename, compression string
		filters                             options.Filters
	)
	cmd := &cobra.Command{
		Use:           "recompress",
		Short:         "Extract a tarball and archive it again with another compression or name",
		Args:          options.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == "" {
				return options.Usagef("missing required flag: --target")
			}
			format, err := compress.ParseFormat(compression)
			if err != nil {
				return options.Usage(err)
			}
			req := roast.Default()
			if err := filters.Apply(cmd, &req); err != nil {
				return err
			}
			res, err := g.Runner(filters.FollowSymlinks).Recompress(cmd.Context(), pipeline.RecompressRequest{
				Input:       target,
				Outdir:      outdir,
				Rename:      rename,
				Compression: format,
				Request:     req,
			})
			if err != nil {
				return err
			}
			return options.WriteJSON(cmd.OutOrStdout(), options.SummaryOf(res))
		},
	}
	f := cmd.Flags()
	f.StringVarP(&target, "target", "t", "", "Archive to recompress (glob allowed)")
	f.StringVarP(&outdir, "outdir", "d", "", "Directory receiving the new archive (default: current directory)")
	f.StringVarP(&rename, "rename", "R", "", "Base name of the new archive, without suffix")
	f.StringVarP(&compression, "compression", "c", "zst", "Compression: "+strings.Join(compress.Names(), ", "))
	filters.Bind(cmd, false)
	return cmd
}
