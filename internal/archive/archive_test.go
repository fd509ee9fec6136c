package archive

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarebyte/roast/internal/compress"
	"github.com/flarebyte/roast/internal/testutil"
)

func stagingTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, testutil.WriteTree(root, map[string]string{
		"pkg/b.txt":       "bee",
		"pkg/a.txt":       "ay",
		"pkg-extra/z.txt": "zed",
		"bin/run.sh":      "#!/bin/sh\necho roast\n",
		"empty/":          "",
		"nested/deep/":    "",
		"link":            "->pkg/a.txt",
	}))
	require.NoError(t, os.Chmod(filepath.Join(root, "bin", "run.sh"), 0o750))
	return root
}

type tarEntry struct {
	hdr  *tar.Header
	body string
}

func readArchive(t *testing.T, path string) []tarEntry {
	t.Helper()
	format, err := compress.FormatFromPath(path)
	require.NoError(t, err)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r, err := compress.NewReader(f, format)
	require.NoError(t, err)
	defer r.Close()

	var out []tarEntry
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(tr)
		require.NoError(t, err)
		out = append(out, tarEntry{hdr: hdr, body: string(b)})
	}
	return out
}

func TestCollectOrderAndTypes(t *testing.T) {
	entries, err := Collect(stagingTree(t))
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path+":"+e.Type.String())
	}
	assert.Equal(t, []string{
		"bin/run.sh:file",
		"empty:dir",
		"link:symlink",
		"nested/deep:dir",
		"pkg-extra/z.txt:file",
		"pkg/a.txt:file",
		"pkg/b.txt:file",
	}, paths)
	assert.Equal(t, "pkg/a.txt", entries[2].Linkname)
}

func TestArchiveReproducible(t *testing.T) {
	root := stagingTree(t)
	out := t.TempDir()
	a := New(nil)

	for _, ext := range []string{".tar", ".tar.gz", ".tar.xz", ".tar.zst", ".tar.zstd", ".tar.bz", ".tar.bz2"} {
		t.Run(ext, func(t *testing.T) {
			first, err := a.Archive(context.Background(), root, filepath.Join(out, "one"+ext), true)
			require.NoError(t, err)

			// Touch everything so only metadata differs between runs.
			later := time.Now().Add(time.Hour)
			require.NoError(t, os.Chtimes(filepath.Join(root, "pkg", "a.txt"), later, later))

			second, err := a.Archive(context.Background(), root, filepath.Join(out, "two"+ext), true)
			require.NoError(t, err)
			assert.Equal(t, first.Digest, second.Digest)
			assert.NotEmpty(t, first.Digest.String())

			info, err := os.Stat(filepath.Join(out, "one"+ext))
			require.NoError(t, err)
			assert.Equal(t, info.Size(), first.Size)
		})
	}
}

func TestArchiveReproducibleHeaders(t *testing.T) {
	root := stagingTree(t)
	out := filepath.Join(t.TempDir(), "sub", "pkg.tar.gz")

	res, err := New(nil).Archive(context.Background(), root, out, true)
	require.NoError(t, err)
	assert.Equal(t, compress.Gzip, res.Format)
	assert.Len(t, res.Entries, 7)

	got := readArchive(t, out)
	byName := map[string]tarEntry{}
	var names []string
	for _, e := range got {
		names = append(names, e.hdr.Name)
		byName[e.hdr.Name] = e
		assert.Equal(t, int64(0), e.hdr.ModTime.Unix(), e.hdr.Name)
		assert.Zero(t, e.hdr.Uid)
		assert.Zero(t, e.hdr.Gid)
		assert.Empty(t, e.hdr.Uname)
		assert.Empty(t, e.hdr.Gname)
	}
	assert.Equal(t, []string{
		"bin/run.sh", "empty/", "link", "nested/deep/", "pkg-extra/z.txt", "pkg/a.txt", "pkg/b.txt",
	}, names)

	assert.Equal(t, int64(0o755), byName["bin/run.sh"].hdr.Mode)
	assert.Equal(t, int64(0o644), byName["pkg/a.txt"].hdr.Mode)
	assert.Equal(t, "ay", byName["pkg/a.txt"].body)
	assert.Equal(t, byte(tar.TypeDir), byName["empty/"].hdr.Typeflag)
	assert.Equal(t, int64(0o755), byName["empty/"].hdr.Mode)
	assert.Equal(t, byte(tar.TypeSymlink), byName["link"].hdr.Typeflag)
	assert.Equal(t, "pkg/a.txt", byName["link"].hdr.Linkname)
	assert.Equal(t, int64(0o755), byName["link"].hdr.Mode)
}

func TestArchiveKeepsMetadataWhenNotReproducible(t *testing.T) {
	root := stagingTree(t)
	when := time.Date(2021, 5, 4, 3, 2, 1, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(root, "pkg", "b.txt"), when, when))

	out := filepath.Join(t.TempDir(), "pkg.tar")
	_, err := New(nil).Archive(context.Background(), root, out, false)
	require.NoError(t, err)

	for _, e := range readArchive(t, out) {
		if e.hdr.Name == "pkg/b.txt" {
			assert.True(t, when.Equal(e.hdr.ModTime))
			assert.Equal(t, int64(os.Getuid()), int64(e.hdr.Uid))
			return
		}
	}
	t.Fatalf("pkg/b.txt not found")
}

func TestArchiveUnsupportedSuffix(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.rar")
	_, err := New(nil).Archive(context.Background(), filepath.Join(t.TempDir(), "missing"), out, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, compress.ErrUnsupportedFileType)
	assert.NoFileExists(t, out)
}

func TestArchiveRemovesPartialOutput(t *testing.T) {
	root := stagingTree(t)
	entries, err := Collect(root)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(root, "pkg", "b.txt")))

	out := filepath.Join(t.TempDir(), "pkg.tar.zst")
	_, err = New(nil).Write(context.Background(), entries, out, true)
	require.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestArchiveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := filepath.Join(t.TempDir(), "pkg.tar")
	_, err := New(nil).Archive(ctx, stagingTree(t), out, true)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, out)
}

func TestReproducibleMode(t *testing.T) {
	assert.Equal(t, int64(0o755), ReproducibleMode(Symlink, 0o777))
	assert.Equal(t, int64(0o755), ReproducibleMode(Symlink, 0o644))
	assert.Equal(t, int64(0o755), ReproducibleMode(Dir, 0o700))
	assert.Equal(t, int64(0o755), ReproducibleMode(File, 0o701))
	assert.Equal(t, int64(0o644), ReproducibleMode(File, 0o600))
}
