package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flarebyte/roast/internal/archive"
	"github.com/flarebyte/roast/internal/compress"
	"github.com/flarebyte/roast/internal/roast"
)

// RecompressRequest extracts Input and archives it again.
type RecompressRequest struct {
	Input  string
	Outdir string
	// Rename replaces the name derived from Input. The codec suffix is
	// always appended.
	Rename string
	// Compression defaults to zstd.
	Compression compress.Format
	// Request carries the filters and flags of the new archive. Its Target,
	// Output and PreserveRoot fields are overwritten.
	Request roast.Request
}

// Recompress extracts an archive into a temporary directory and roasts the
// result with another codec or name.
func (r *Runner) Recompress(ctx context.Context, req RecompressRequest) (archive.Result, error) {
	format := req.Compression
	if format == 0 {
		format = compress.Zstd
	}

	tmp, err := os.MkdirTemp(r.opts.TempDir, "roast-recompress-")
	if err != nil {
		return archive.Result{}, fmt.Errorf("failed to create temporary directory: %w", err)
	}
	defer r.removeTemp(tmp)

	raw, err := r.Raw(ctx, RawRequest{Input: req.Input, Outdir: tmp})
	if err != nil {
		return archive.Result{}, err
	}

	name := RecompressName(raw.Input, req.Rename) + format.Extension()
	output, err := roast.ResolveOutput(req.Outdir, name)
	if err != nil {
		return archive.Result{}, err
	}

	rr := req.Request
	rr.Target = tmp
	rr.Output = output
	rr.PreserveRoot = false
	return r.Roast(ctx, rr)
}

// RecompressName derives the base name of a recompressed archive. Without a
// rename, extensions are stripped from the file name of input until it ends
// in a digit or has no extension left.
func RecompressName(input, rename string) string {
	if rename != "" {
		return rename
	}
	name := filepath.Base(input)
	for !endsWithDigit(name) {
		ext := filepath.Ext(name)
		if ext == "" || ext == name {
			break
		}
		name = name[:len(name)-len(ext)]
	}
	return name
}

func endsWithDigit(s string) bool {
	if s == "" {
		return false
	}
	c := s[len(s)-1]
	return c >= '0' && c <= '9'
}
