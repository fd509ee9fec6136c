package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/flarebyte/roast/internal/compress"
	"github.com/flarebyte/roast/internal/detect"
	"github.com/flarebyte/roast/internal/extract"
	"github.com/flarebyte/roast/internal/pathmatch"
)

// ErrDirectoryTarget is returned when an archive path names a directory.
var ErrDirectoryTarget = errors.New("target is a directory, expected an archive file")

// RawRequest extracts Input, which may be a glob, into Outdir.
type RawRequest struct {
	Input string
	// Outdir defaults to the current working directory.
	Outdir string
}

// RawResult describes an extraction.
type RawResult struct {
	Input   string
	Outdir  string
	Format  compress.Format
	Entries int
}

// Raw detects the compression of an archive from its content and extracts it.
func (r *Runner) Raw(ctx context.Context, req RawRequest) (RawResult, error) {
	input, err := pathmatch.ResolveGlob(req.Input, r.logger)
	if err != nil {
		return RawResult{}, err
	}
	info, err := os.Stat(input)
	if err != nil {
		return RawResult{}, fmt.Errorf("failed to read %s: %w", input, err)
	}
	if info.IsDir() {
		return RawResult{}, fmt.Errorf("%w: %s", ErrDirectoryTarget, input)
	}

	format, err := detect.File(input)
	if err != nil {
		return RawResult{}, err
	}
	outdir := req.Outdir
	if outdir == "" {
		if outdir, err = os.Getwd(); err != nil {
			return RawResult{}, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	r.logger.Info("extracting archive", "input", input, "format", format.String(), "outdir", outdir)
	n, err := extract.New(r.logger).Extract(ctx, input, format, outdir)
	if err != nil {
		r.logger.Error("extraction failed", "input", input, "error", err)
		return RawResult{}, err
	}
	return RawResult{Input: input, Outdir: outdir, Format: format, Entries: n}, nil
}
