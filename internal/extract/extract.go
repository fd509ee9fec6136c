// Package extract unpacks tar archives produced by roast or any other tool.
package extract

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/flarebyte/roast/internal/compress"
	"github.com/flarebyte/roast/internal/logging"
	"github.com/flarebyte/roast/internal/pathmatch"
)

// ErrPathEscape is returned for entries that would land outside the output
// directory.
var ErrPathEscape = errors.New("path escapes target directory")

// Extractor unpacks archives.
type Extractor struct {
	logger *slog.Logger
}

// New returns an Extractor logging to logger, which may be nil.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logging.OrDiscard(logger)}
}

// Extract decodes src with format and writes its entries below outdir. It
// returns the number of entries written. Hard links and device entries are
// skipped.
func (x *Extractor) Extract(ctx context.Context, src string, format compress.Format, outdir string) (int, error) {
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", outdir, err)
	}
	rootAbs, err := pathmatch.Canonicalize(outdir)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer f.Close()
	r, err := compress.NewReader(f, format)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s stream: %w", format, err)
	}
	defer r.Close()

	tr := tar.NewReader(r)
	count := 0
	for {
		if err := isDone(ctx); err != nil {
			return count, err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read tar entry: %w", err)
		}
		written, err := x.handleHeader(tr, hdr, rootAbs)
		if err != nil {
			return count, err
		}
		if written {
			count++
		}
	}
	x.logger.Debug("extracted archive", "src", src, "dst", rootAbs, "entries", count)
	return count, nil
}

// handleHeader validates and dispatches extraction by header type.
func (x *Extractor) handleHeader(tr *tar.Reader, hdr *tar.Header, rootAbs string) (bool, error) {
	fullPath, err := safeJoin(rootAbs, hdr.Name)
	if err != nil {
		return false, err
	}
	if fullPath == rootAbs {
		return false, nil
	}
	mode := os.FileMode(hdr.Mode).Perm()

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := ensureParentDir(rootAbs, fullPath); err != nil {
			return false, err
		}
		return true, extractDir(rootAbs, fullPath, mode)
	case tar.TypeReg:
		if err := ensureParentDir(rootAbs, fullPath); err != nil {
			return false, err
		}
		return true, extractRegularFile(tr, fullPath, mode, hdr)
	case tar.TypeSymlink:
		if err := ensureParentDir(rootAbs, fullPath); err != nil {
			return false, err
		}
		return true, extractSymlink(fullPath, hdr.Linkname)
	default:
		x.logger.Debug("skipping unsupported tar entry", "name", hdr.Name, "type", string(hdr.Typeflag))
		return false, nil
	}
}
