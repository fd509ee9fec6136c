// Package scm implements `roast scm`.
package scm

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/flarebyte/roast/cmd/roast/options"
	"github.com/flarebyte/roast/internal/compress"
	"github.com/flarebyte/roast/internal/pipeline"
	"github.com/flarebyte/roast/internal/roast"
	gitscm "github.com/flarebyte/roast/internal/scm"
)

type flags struct {
	url         string
	revision    string
	depth       int
	outfile     string
	outdir      string
	compression string
	changelog   string
	filters     options.Filters
}

// NewCmd returns the scm command. clone replaces the network clone when
// not nil.
func NewCmd(g *options.Globals, clone pipeline.Cloner) *cobra.Command {
	fl := &flags{}
	cmd := &cobra.Command{
		Use:           "scm",
		Short:         "Clone a git repository at a revision and archive its working tree",
		Args:          options.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fl.url == "" {
				return options.Usagef("missing required flag: --url")
			}
			format, err := compress.ParseFormat(fl.compression)
			if err != nil {
				return options.Usage(err)
			}
			req := roast.Default()
			if err := fl.filters.Apply(cmd, &req); err != nil {
				return err
			}
			r := pipeline.New(pipeline.Options{
				Logger:         g.Logger(),
				TempDir:        g.TempDir,
				Workers:        g.Workers,
				FollowSymlinks: fl.filters.FollowSymlinks,
				Clone:          clone,
			})
			res, err := r.SCM(cmd.Context(), pipeline.SCMRequest{
				URL:         fl.url,
				Revision:    fl.revision,
				Depth:       fl.depth,
				Outdir:      fl.outdir,
				Outfile:     fl.outfile,
				Compression: format,
				Changelog:   fl.changelog,
				Request:     req,
			})
			if err != nil {
				return err
			}
			s := options.SummaryOf(res.Result)
			s.Commit = res.Commit
			s.Version = res.Version
			return options.WriteJSON(cmd.OutOrStdout(), s)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fl.url, "url", "u", "", "Remote URL of the git repository")
	f.StringVar(&fl.revision, "revision", "", "Branch, tag or commit hash (default: the remote HEAD)")
	f.IntVar(&fl.depth, "depth", gitscm.DefaultDepth, "Clone depth; 0 clones the full history")
	f.StringVarP(&fl.outfile, "outfile", "f", "", "Archive file name (default: <repo>-<revision> plus the compression suffix)")
	f.StringVarP(&fl.outdir, "outdir", "d", "", "Directory receiving the archive (default: current directory)")
	f.StringVarP(&fl.compression, "compression", "c", "zst", "Compression used for the default file name: "+strings.Join(compress.Names(), ", "))
	f.StringVar(&fl.changelog, "changelog", "", "Write the commit log of the revision to this file")
	fl.filters.Bind(cmd, true)
	return cmd
}
