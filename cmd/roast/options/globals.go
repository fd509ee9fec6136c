package options

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flarebyte/roast/internal/logging"
	"github.com/flarebyte/roast/internal/pipeline"
)

// Globals are the persistent flags of the root command.
type Globals struct {
	LogLevel string
	Quiet    bool
	Workers  int
	TempDir  string

	logger *slog.Logger
}

// Bind registers the persistent flags on cmd.
func (g *Globals) Bind(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&g.LogLevel, "log-level", "", "Log level: trace, debug, info, warn or error (default from "+logging.EnvLevel+", else info)")
	f.BoolVarP(&g.Quiet, "quiet", "q", false, "Only log errors")
	f.IntVar(&g.Workers, "workers", 0, "Parallel file copies (default: number of CPUs)")
	f.StringVar(&g.TempDir, "tmpdir", "", "Parent directory for temporary directories")
}

// Setup builds the logger. It runs before every subcommand.
func (g *Globals) Setup(w io.Writer) error {
	level := g.LogLevel
	if g.Quiet {
		level = "error"
	}
	if g.Workers < 0 {
		return Usagef("invalid --workers: %d", g.Workers)
	}
	l, err := logging.New(w, level)
	if err != nil {
		return Usage(err)
	}
	g.logger = l
	return nil
}

// Logger returns the configured logger, or a discarding one before Setup.
func (g *Globals) Logger() *slog.Logger {
	return logging.OrDiscard(g.logger)
}

// Runner returns a pipeline runner configured from the global flags.
func (g *Globals) Runner(followSymlinks bool) *pipeline.Runner {
	return pipeline.New(pipeline.Options{
		Logger:         g.Logger(),
		TempDir:        g.TempDir,
		Workers:        g.Workers,
		FollowSymlinks: followSymlinks,
	})
}
