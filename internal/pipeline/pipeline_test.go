package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarebyte/roast/internal/compress"
	"github.com/flarebyte/roast/internal/roast"
	"github.com/flarebyte/roast/internal/staging"
	"github.com/flarebyte/roast/internal/testutil"
)

func newTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "pkg-1.2")
	require.NoError(t, testutil.WriteTree(root, map[string]string{
		"README.md":       "readme",
		"src/main.go":     "package main",
		"src/util/u.go":   "package util",
		"empty/":          "",
		"link":            "->README.md",
		"vendor/dep/d.go": "package dep",
	}))
	return root
}

func newRunner(t *testing.T, phases *[]Phase) *Runner {
	t.Helper()
	return New(Options{
		TempDir: t.TempDir(),
		Workers: 2,
		OnPhase: func(p Phase) {
			if phases != nil {
				*phases = append(*phases, p)
			}
		},
	})
}

func listTree(t *testing.T, root string) []string {
	t.Helper()
	got, err := testutil.ListTree(root)
	require.NoError(t, err)
	return got
}

func TestRoastRoundTrip(t *testing.T) {
	for _, suffix := range []string{".tar", ".tar.gz", ".tar.xz", ".tar.zst", ".tar.bz2"} {
		t.Run(suffix, func(t *testing.T) {
			target := newTree(t)
			var phases []Phase
			r := newRunner(t, &phases)

			req := roast.Default()
			req.Target = target
			req.Reproducible = true
			req.Output = filepath.Join(t.TempDir(), "out"+suffix)
			res, err := r.Roast(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, []Phase{Idle, Staging, Walking, Encoding, Done}, phases)
			assert.FileExists(t, res.Output)

			outdir := t.TempDir()
			raw, err := r.Raw(context.Background(), RawRequest{Input: res.Output, Outdir: outdir})
			require.NoError(t, err)
			assert.Equal(t, res.Format, raw.Format)
			assert.Equal(t, listTree(t, target), listTree(t, outdir))

			b, err := os.ReadFile(filepath.Join(outdir, "src", "util", "u.go"))
			require.NoError(t, err)
			assert.Equal(t, "package util", string(b))
			link, err := os.Readlink(filepath.Join(outdir, "link"))
			require.NoError(t, err)
			assert.Equal(t, "README.md", link)
		})
	}
}

func TestRoastPreserveRoot(t *testing.T) {
	target := newTree(t)
	r := newRunner(t, nil)

	req := roast.Default()
	req.Target = target
	req.PreserveRoot = true
	req.Output = filepath.Join(t.TempDir(), "out.tar.gz")
	res, err := r.Roast(context.Background(), req)
	require.NoError(t, err)
	for _, e := range res.Entries {
		assert.True(t, strings.HasPrefix(e.Path, "pkg-1.2/"), e.Path)
	}
}

func TestRoastIncludeExclude(t *testing.T) {
	target := newTree(t)
	r := newRunner(t, nil)

	req := roast.Default()
	req.Target = target
	req.Exclude = []string{"vendor", "src"}
	req.Include = []string{"src/main.go"}
	req.Output = filepath.Join(t.TempDir(), "out.tar")
	res, err := r.Roast(context.Background(), req)
	require.NoError(t, err)

	var paths []string
	for _, e := range res.Entries {
		paths = append(paths, e.Path)
	}
	assert.Contains(t, paths, "src/main.go")
	assert.NotContains(t, paths, "src/util/u.go")
	assert.NotContains(t, paths, "vendor/dep/d.go")
	assert.Contains(t, paths, "README.md")
}

func TestRoastHiddenAndVCS(t *testing.T) {
	target := newTree(t)
	require.NoError(t, testutil.WriteTree(target, map[string]string{
		".git/HEAD":  "ref: refs/heads/main",
		".gitignore": "*.o",
		".env":       "SECRET=1",
	}))
	r := newRunner(t, nil)

	paths := func(req roast.Request) []string {
		req.Target = target
		req.Output = filepath.Join(t.TempDir(), "out.tar")
		res, err := r.Roast(context.Background(), req)
		require.NoError(t, err)
		var out []string
		for _, e := range res.Entries {
			out = append(out, e.Path)
		}
		return out
	}

	got := paths(roast.Default())
	assert.NotContains(t, got, ".git/HEAD")
	assert.NotContains(t, got, ".gitignore")
	assert.Contains(t, got, ".env")

	req := roast.Default()
	req.IgnoreVCS = false
	req.IgnoreHidden = true
	got = paths(req)
	assert.Contains(t, got, ".git/HEAD")
	assert.Contains(t, got, ".gitignore")
	assert.NotContains(t, got, ".env")
}

func TestRoastStagingInsideTarget(t *testing.T) {
	target := newTree(t)
	r := New(Options{TempDir: target})

	req := roast.Default()
	req.Target = target
	req.Output = filepath.Join(target, "out.tar.gz")
	res, err := r.Roast(context.Background(), req)
	require.NoError(t, err)
	for _, e := range res.Entries {
		assert.NotContains(t, e.Path, staging.TempPrefix)
		assert.NotEqual(t, "out.tar.gz", e.Path)
	}

	left, err := filepath.Glob(filepath.Join(target, staging.TempPrefix+"*"))
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRoastUnsupportedSuffix(t *testing.T) {
	target := newTree(t)
	tmp := t.TempDir()
	var phases []Phase
	r := New(Options{TempDir: tmp, OnPhase: func(p Phase) { phases = append(phases, p) }})

	req := roast.Default()
	req.Target = target
	req.Output = filepath.Join(t.TempDir(), "out.rar")
	_, err := r.Roast(context.Background(), req)
	require.ErrorIs(t, err, compress.ErrUnsupportedFileType)
	assert.NoFileExists(t, req.Output)
	assert.Equal(t, []Phase{Idle, Failed}, phases)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRoastCleansUpAfterFailure(t *testing.T) {
	target := newTree(t)
	tmp := t.TempDir()
	r := New(Options{TempDir: tmp})

	req := roast.Default()
	req.Target = target
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	req.Output = filepath.Join(blocker, "out.tar")
	_, err := r.Roast(context.Background(), req)
	require.Error(t, err)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRoastReproducibleDigest(t *testing.T) {
	target := newTree(t)
	r := newRunner(t, nil)

	req := roast.Default()
	req.Target = target
	req.Reproducible = true
	req.Output = filepath.Join(t.TempDir(), "a.tar.zst")
	first, err := r.Roast(context.Background(), req)
	require.NoError(t, err)

	later := time.Now().Add(48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(target, "README.md"), later, later))

	req.Output = filepath.Join(t.TempDir(), "b.tar.zst")
	second, err := r.Roast(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, first.Size, second.Size)
}

func TestRoastValidate(t *testing.T) {
	r := newRunner(t, nil)
	_, err := r.Roast(context.Background(), roast.Request{Output: "out.tar"})
	assert.Error(t, err)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "encoding", Encoding.String())
	assert.Equal(t, "Phase(42)", Phase(42).String())
}
