// Package pipeline runs the top level roast operations: building an archive
// from a directory, extracting an archive, recompressing an archive and
// archiving a remote git repository.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	gogit "github.com/go-git/go-git/v5"

	"github.com/flarebyte/roast/internal/archive"
	"github.com/flarebyte/roast/internal/compress"
	"github.com/flarebyte/roast/internal/logging"
	"github.com/flarebyte/roast/internal/roast"
	"github.com/flarebyte/roast/internal/scm"
	"github.com/flarebyte/roast/internal/staging"
)

// Phase is a step of an archive build.
type Phase int

const (
	Idle Phase = iota
	Staging
	Walking
	Encoding
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Staging:
		return "staging"
	case Walking:
		return "walking"
	case Encoding:
		return "encoding"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Cloner fetches a repository into dir.
type Cloner func(ctx context.Context, url, dir string, depth int) (*gogit.Repository, error)

// Options configures a Runner.
type Options struct {
	Logger *slog.Logger
	// TempDir is the parent of every temporary directory. Empty means
	// os.TempDir().
	TempDir        string
	Workers        int
	FollowSymlinks bool
	// OnPhase is called on every phase change of an archive build.
	OnPhase func(Phase)
	// Clone defaults to scm.Clone.
	Clone Cloner
}

// Runner executes operations. It holds no state between calls.
type Runner struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Runner.
func New(opts Options) *Runner {
	if opts.Clone == nil {
		opts.Clone = scm.Clone
	}
	return &Runner{opts: opts, logger: logging.OrDiscard(opts.Logger)}
}

func (r *Runner) phase(p Phase) {
	r.logger.Debug("phase", "phase", p.String())
	if r.opts.OnPhase != nil {
		r.opts.OnPhase(p)
	}
}

// Roast stages req.Target and writes the archive to req.Output. The staging
// directory is removed on every path; failing to remove it is logged and
// does not change the result.
func (r *Runner) Roast(ctx context.Context, req roast.Request) (res archive.Result, err error) {
	r.phase(Idle)
	defer func() {
		if err != nil {
			r.logger.Error("roast failed", "target", req.Target, "output", req.Output, "error", err)
			r.phase(Failed)
			return
		}
		r.phase(Done)
	}()

	if err := req.Validate(); err != nil {
		return archive.Result{}, err
	}
	if _, err := compress.FormatFromPath(req.Output); err != nil {
		return archive.Result{}, err
	}
	r.logger.Info("starting roast", "target", req.Target, "output", req.Output)

	r.phase(Staging)
	h, err := staging.Assemble(ctx, req, staging.Options{
		TempDir:        r.opts.TempDir,
		Logger:         r.logger,
		Workers:        r.opts.Workers,
		FollowSymlinks: r.opts.FollowSymlinks,
	})
	if err != nil {
		return archive.Result{}, err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			r.logger.Warn("failed to clean up staging directory", "path", h.Root, "error", cerr)
		}
	}()

	r.phase(Walking)
	entries, err := archive.Collect(h.Root)
	if err != nil {
		return archive.Result{}, err
	}

	r.phase(Encoding)
	res, err = archive.New(r.logger).Write(ctx, entries, req.Output, req.Reproducible)
	if err != nil {
		return archive.Result{}, err
	}
	r.logger.Info("archive written", "output", res.Output, "entries", len(res.Entries), "digest", res.Digest.String())
	return res, nil
}

// removeTemp removes a temporary directory, logging failures.
func (r *Runner) removeTemp(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		r.logger.Warn("failed to clean up temporary directory", "path", dir, "error", err)
	}
}
