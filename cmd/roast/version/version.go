package version

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/flarebyte/roast/internal/buildinfo"
	"github.com/flarebyte/roast/internal/compress"
)

var (
	flagShort bool
	flagJSON  bool
)

// VersionCmd prints the roast version.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagShort || !flagJSON {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "roast %s\n", buildinfo.Summary())
			return err
		}

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "roast version: %s\n", buildinfo.Summary())
		out := map[string]any{
			"version":      buildinfo.ResolvedVersion(),
			"commit":       buildinfo.Commit,
			"date":         buildinfo.Date,
			"built_by":     buildinfo.BuiltBy,
			"compressions": compress.Names(),
			"go":           runtime.Version(),
			"go_os":        runtime.GOOS,
			"go_arch":      runtime.GOARCH,
			"timestamp":    time.Now().UTC().Format(time.RFC3339Nano),
		}
		return encodeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	VersionCmd.Flags().BoolVar(&flagShort, "short", false, "Print only the version string")
	VersionCmd.Flags().BoolVar(&flagJSON, "json", false, "Print detailed JSON version info")
}
