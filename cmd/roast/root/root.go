package root

import (
	"github.com/spf13/cobra"

	"github.com/flarebyte/roast/cmd/roast/archive"
	"github.com/flarebyte/roast/cmd/roast/options"
	"github.com/flarebyte/roast/cmd/roast/raw"
	"github.com/flarebyte/roast/cmd/roast/recompress"
	"github.com/flarebyte/roast/cmd/roast/scm"
	"github.com/flarebyte/roast/cmd/roast/version"
	"github.com/flarebyte/roast/internal/pipeline"
)

// NewRootCmd creates the root command for roast.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(clone pipeline.Cloner) *cobra.Command {
	g := &options.Globals{}
	cmd := &cobra.Command{
		Use:   "roast",
		Short: "Create reproducible source tarballs from directories and git repositories",
		Long: "Create reproducible source tarballs from directories and git repositories.\n" +
			"Set the log level with --log-level or the ROAST_LOG environment variable.",
		Args: options.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.Setup(cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	g.Bind(cmd)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return options.Usage(err)
	})

	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(archive.NewCmd(g))
	cmd.AddCommand(raw.NewCmd(g))
	cmd.AddCommand(recompress.NewCmd(g))
	cmd.AddCommand(scm.NewCmd(g, clone))

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
