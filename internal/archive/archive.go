// Package archive serializes a staging tree into a compressed tar stream.
//
// Entries are written in path order so that identical trees yield identical
// streams. In reproducible mode headers carry no timestamps or ownership.
package archive

import (
	"archive/tar"
	"context"
	_ "crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/flarebyte/roast/internal/compress"
	"github.com/flarebyte/roast/internal/logging"
)

// Result describes a written archive.
type Result struct {
	Output  string
	Format  compress.Format
	Entries []Entry
	// Digest is the sha256 of the bytes written to Output.
	Digest digest.Digest
	Size   int64
}

// Archiver writes archives.
type Archiver struct {
	logger *slog.Logger
}

// New returns an Archiver logging to logger, which may be nil.
func New(logger *slog.Logger) *Archiver {
	return &Archiver{logger: logging.OrDiscard(logger)}
}

// Archive collects root and writes it to output. The codec is chosen from
// the suffix of output before anything is read or written.
func (a *Archiver) Archive(ctx context.Context, root, output string, reproducible bool) (Result, error) {
	if _, err := compress.FormatFromPath(output); err != nil {
		return Result{}, err
	}
	entries, err := Collect(root)
	if err != nil {
		return Result{}, err
	}
	return a.Write(ctx, entries, output, reproducible)
}

// Write encodes entries, as returned by Collect, into output. A failed write
// removes the partial output file.
func (a *Archiver) Write(ctx context.Context, entries []Entry, output string, reproducible bool) (res Result, err error) {
	format, err := compress.FormatFromPath(output)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create %s: %w", output, err)
	}
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			_ = f.Close()
		}
		if rerr := os.Remove(output); rerr != nil && !os.IsNotExist(rerr) {
			a.logger.Warn("failed to remove partial archive", "path", output, "error", rerr)
		}
	}()

	digester := digest.Canonical.Digester()
	counter := &countingWriter{}
	cw, err := compress.NewWriter(io.MultiWriter(f, digester.Hash(), counter), format)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create %s encoder: %w", format, err)
	}
	tw := tar.NewWriter(cw)

	a.logger.Debug("writing archive", "path", output, "format", format.String(), "entries", len(entries), "reproducible", reproducible)
	for _, e := range entries {
		if err := isDone(ctx); err != nil {
			_ = cw.Close()
			return Result{}, err
		}
		if err := writeEntry(tw, e, reproducible); err != nil {
			_ = cw.Close()
			return Result{}, err
		}
	}

	// The tar trailer goes into the encoder before the encoder is finished.
	if err := tw.Close(); err != nil {
		_ = cw.Close()
		return Result{}, fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err := cw.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to finish %s stream: %w", format, err)
	}
	closed = true
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to close %s: %w", output, err)
	}

	return Result{
		Output:  output,
		Format:  format,
		Entries: entries,
		Digest:  digester.Digest(),
		Size:    counter.n,
	}, nil
}

func writeEntry(tw *tar.Writer, e Entry, reproducible bool) error {
	hdr, err := Header(e, reproducible)
	if err != nil {
		return err
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", e.Path, err)
	}
	if e.Type != File {
		return nil
	}
	in, err := os.Open(e.abs)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", e.abs, err)
	}
	defer in.Close()
	if _, err := io.CopyN(tw, in, e.Size); err != nil {
		return fmt.Errorf("failed to write file content for %s: %w", e.Path, err)
	}
	return nil
}

type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

// isDone returns a wrapped context cancellation error if ctx is done.
func isDone(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("archiving canceled: %w", ctx.Err())
	default:
		return nil
	}
}
