// Package raw implements `roast raw`.
package raw

import (
	"github.com/spf13/cobra"

	"github.com/flarebyte/roast/cmd/roast/options"
	"github.com/flarebyte/roast/internal/pipeline"
)

type summary struct {
	Input   string `json:"input"`
	Outdir  string `json:"outdir"`
	Format  string `json:"format"`
	Entries int    `json:"entries"`
}

// NewCmd returns the raw command.
func NewCmd(g *options.Globals) *cobra.Command {
	var target, outdir string
	cmd := &cobra.Command{
		Use:           "raw",
		Short:         "Extract a tarball, detecting its compression from the content",
		Args:          options.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == "" {
				return options.Usagef("missing required flag: --target")
			}
			res, err := g.Runner(false).Raw(cmd.Context(), pipeline.RawRequest{Input: target, Outdir: outdir})
			if err != nil {
				return err
			}
			return options.WriteJSON(cmd.OutOrStdout(), summary{
				Input:   res.Input,
				Outdir:  res.Outdir,
				Format:  res.Format.String(),
				Entries: res.Entries,
			})
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "Archive to extract (glob allowed)")
	cmd.Flags().StringVarP(&outdir, "outdir", "d", "", "Directory receiving the content (default: current directory)")
	return cmd
}
