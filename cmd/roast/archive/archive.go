// Package archive implements `roast archive`.
package archive

import (
	"github.com/spf13/cobra"

	"github.com/flarebyte/roast/cmd/roast/options"
	"github.com/flarebyte/roast/internal/config"
	"github.com/flarebyte/roast/internal/manifest"
	"github.com/flarebyte/roast/internal/pathmatch"
	"github.com/flarebyte/roast/internal/roast"
)

type flags struct {
	target   string
	outfile  string
	outdir   string
	config   string
	manifest string
	filters  options.Filters
}

// NewCmd returns the archive command.
func NewCmd(g *options.Globals) *cobra.Command {
	fl := &flags{}
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Create a tarball from a directory",
		Long: "Create a tarball from a directory. The suffix of --outfile selects the\n" +
			"compression: .tar, .tar.gz, .tar.xz, .tar.zst or .tar.bz2.",
		Args:          options.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := fl.request(cmd, g)
			if err != nil {
				return err
			}
			res, err := g.Runner(fl.filters.FollowSymlinks).Roast(cmd.Context(), req)
			if err != nil {
				return err
			}
			if fl.manifest != "" {
				if err := manifest.Write(fl.manifest, res, req.Reproducible); err != nil {
					return err
				}
			}
			return options.WriteJSON(cmd.OutOrStdout(), options.SummaryOf(res))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&fl.target, "target", "t", "", "Directory to archive (glob allowed)")
	f.StringVarP(&fl.outfile, "outfile", "f", "", "Archive file name; its suffix selects the compression")
	f.StringVarP(&fl.outdir, "outdir", "d", "", "Directory receiving the archive (default: current directory)")
	f.StringVarP(&fl.config, "config", "c", "", "Request file (.cue, .yaml or .yml); flags override its fields")
	f.StringVar(&fl.manifest, "manifest", "", "Write a YAML manifest of the archive to this path")
	fl.filters.Bind(cmd, true)
	return cmd
}

// request merges the config file, if any, with the flags set on the
// command line.
func (fl *flags) request(cmd *cobra.Command, g *options.Globals) (roast.Request, error) {
	req := roast.Default()
	var outfile, outdir string
	if fl.config != "" {
		file, err := config.Load(fl.config)
		if err != nil {
			return roast.Request{}, err
		}
		if err := file.Apply(&req); err != nil {
			return roast.Request{}, err
		}
		if file.HasOutfile {
			outfile = file.Outfile
		}
		if file.HasOutdir {
			outdir = file.Outdir
		}
	}

	f := cmd.Flags()
	if f.Changed("target") {
		req.Target = fl.target
	}
	if f.Changed("outfile") {
		outfile = fl.outfile
	}
	if f.Changed("outdir") {
		outdir = fl.outdir
	}
	if err := fl.filters.Apply(cmd, &req); err != nil {
		return roast.Request{}, err
	}

	if req.Target == "" {
		return roast.Request{}, options.Usagef("missing required flag: --target")
	}
	if outfile == "" {
		return roast.Request{}, options.Usagef("missing required flag: --outfile")
	}
	target, err := pathmatch.ResolveGlob(req.Target, g.Logger())
	if err != nil {
		return roast.Request{}, err
	}
	req.Target = target
	if req.Output, err = roast.ResolveOutput(outdir, outfile); err != nil {
		return roast.Request{}, err
	}
	return req, nil
}
