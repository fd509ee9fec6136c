package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarebyte/roast/internal/compress"
	"github.com/flarebyte/roast/internal/detect"
	"github.com/flarebyte/roast/internal/roast"
)

func roastTo(t *testing.T, r *Runner, target, output string) {
	t.Helper()
	req := roast.Default()
	req.Target = target
	req.Output = output
	_, err := r.Roast(context.Background(), req)
	require.NoError(t, err)
}

func TestRawDetectsFromContent(t *testing.T) {
	target := newTree(t)
	r := newRunner(t, nil)
	dir := t.TempDir()
	src := filepath.Join(dir, "pkg.tar.xz")
	roastTo(t, r, target, src)

	renamed := filepath.Join(dir, "pkg.bin")
	require.NoError(t, os.Rename(src, renamed))

	outdir := t.TempDir()
	res, err := r.Raw(context.Background(), RawRequest{Input: renamed, Outdir: outdir})
	require.NoError(t, err)
	assert.Equal(t, compress.Xz, res.Format)
	assert.Positive(t, res.Entries)
	assert.FileExists(t, filepath.Join(outdir, "src", "main.go"))
}

func TestRawGlob(t *testing.T) {
	target := newTree(t)
	r := newRunner(t, nil)
	dir := t.TempDir()
	roastTo(t, r, target, filepath.Join(dir, "pkg-1.2.tar.gz"))

	outdir := t.TempDir()
	res, err := r.Raw(context.Background(), RawRequest{Input: filepath.Join(dir, "pkg-*.tar.gz"), Outdir: outdir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pkg-1.2.tar.gz"), res.Input)
}

func TestRawRejectsDirectory(t *testing.T) {
	r := newRunner(t, nil)
	_, err := r.Raw(context.Background(), RawRequest{Input: t.TempDir(), Outdir: t.TempDir()})
	assert.ErrorIs(t, err, ErrDirectoryTarget)
}

func TestRawUnsupported(t *testing.T) {
	r := newRunner(t, nil)
	p := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(p, []byte("plain text, not an archive"), 0o644))
	_, err := r.Raw(context.Background(), RawRequest{Input: p, Outdir: t.TempDir()})
	assert.ErrorIs(t, err, detect.ErrUnsupportedFormat)
}
