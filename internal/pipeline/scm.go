package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flarebyte/roast/internal/archive"
	"github.com/flarebyte/roast/internal/compress"
	"github.com/flarebyte/roast/internal/roast"
	"github.com/flarebyte/roast/internal/scm"
)

// SCMRequest archives a remote git repository at a revision.
type SCMRequest struct {
	URL string
	// Revision is a branch, tag or commit. Empty means the default branch.
	Revision string
	// Depth <= 0 clones the full history.
	Depth   int
	Outdir  string
	Outfile string
	// Compression selects the suffix of the generated name when Outfile is
	// empty. Defaults to zstd.
	Compression compress.Format
	// Changelog, when set, receives the commit log of the checked out
	// revision.
	Changelog string
	// Request carries filters and flags. Its Target and Output fields are
	// overwritten.
	Request roast.Request
}

// SCMResult describes an archived repository.
type SCMResult struct {
	archive.Result
	Commit  string
	Version string
}

// SCM clones the repository into a temporary directory, checks out the
// revision and roasts the working tree.
func (r *Runner) SCM(ctx context.Context, req SCMRequest) (SCMResult, error) {
	if req.URL == "" {
		return SCMResult{}, fmt.Errorf("missing git repository url")
	}
	format := req.Compression
	if format == 0 {
		format = compress.Zstd
	}

	tmp, err := os.MkdirTemp(r.opts.TempDir, "roast-scm-")
	if err != nil {
		return SCMResult{}, fmt.Errorf("failed to create temporary directory: %w", err)
	}
	defer r.removeTemp(tmp)

	name := scm.RepoName(req.URL)
	dir := filepath.Join(tmp, name)
	r.logger.Info("cloning repository", "url", req.URL, "revision", req.Revision, "depth", req.Depth)
	repo, err := r.opts.Clone(ctx, req.URL, dir, req.Depth)
	if err != nil {
		return SCMResult{}, err
	}
	hash, err := scm.Checkout(ctx, repo, req.Revision, r.logger)
	if err != nil {
		return SCMResult{}, err
	}

	version := req.Revision
	if version == "" {
		if version, err = scm.Describe(repo); err != nil {
			return SCMResult{}, err
		}
	}

	if req.Changelog != "" {
		log, err := scm.Changelog(repo, 0)
		if err != nil {
			return SCMResult{}, err
		}
		if err := os.WriteFile(req.Changelog, []byte(log), 0o644); err != nil {
			return SCMResult{}, fmt.Errorf("failed to write changelog: %w", err)
		}
	}

	outfile := req.Outfile
	if outfile == "" {
		outfile = scm.DefaultName(name, version) + format.Extension()
	}
	output, err := roast.ResolveOutput(req.Outdir, outfile)
	if err != nil {
		return SCMResult{}, err
	}

	rr := req.Request
	rr.Target = dir
	rr.Output = output
	res, err := r.Roast(ctx, rr)
	if err != nil {
		return SCMResult{}, err
	}
	return SCMResult{Result: res, Commit: hash.String(), Version: version}, nil
}
