// Package treecopy mirrors a directory tree into another directory while
// honouring the hidden, VCS and exclude policies of an archive build.
package treecopy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/flarebyte/roast/internal/logging"
	"github.com/flarebyte/roast/internal/pathmatch"
)

// Options controls one copy pass.
type Options struct {
	IgnoreHidden bool
	IgnoreVCS    bool
	Exclude      pathmatch.ExcludeSet
	// AdvisoryExclude copies excluded entries anyway and logs a warning.
	AdvisoryExclude bool
	// Skip lists canonical directories that are never entered.
	Skip []string
	// Gitignore, when set, drops paths matched by the .gitignore files of
	// the tree it was built for.
	Gitignore *pathmatch.Gitignore
	// FollowSymlinks descends symlinked directories and copies symlinked
	// files by content. Broken symlinks are always copied as symlinks.
	FollowSymlinks bool
}

// Copier copies trees with a bounded pool of file workers.
type Copier struct {
	logger  *slog.Logger
	workers int
}

// New returns a Copier. workers <= 0 selects one worker per CPU.
func New(logger *slog.Logger, workers int) *Copier {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	return &Copier{logger: logging.OrDiscard(logger), workers: workers}
}

type pending struct {
	src string
	dst string
}

// CopyFiltered copies the content of src into dst. Directories are visited
// from an explicit queue; files are copied concurrently. The first I/O error
// aborts the pass.
func (c *Copier) CopyFiltered(ctx context.Context, src, dst string, opts Options) error {
	srcRoot, err := pathmatch.Canonicalize(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(srcRoot)
	if err != nil {
		return fmt.Errorf("failed to stat source %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", src)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	dstRoot, err := pathmatch.Canonicalize(dst)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	visited := map[string]bool{srcRoot: true}
	queue := []pending{{src: srcRoot, dst: dst}}
	for len(queue) > 0 {
		if err := isDone(gctx); err != nil {
			break
		}
		dir := queue[0]
		queue = queue[1:]

		next, err := c.visitDir(g, dir, dstRoot, visited, opts)
		if err != nil {
			_ = g.Wait()
			return err
		}
		queue = append(queue, next...)
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return isDone(ctx)
}

// visitDir schedules the copy of every file of dir and returns the
// sub directories still to visit.
func (c *Copier) visitDir(g *errgroup.Group, dir pending, dstRoot string, visited map[string]bool, opts Options) ([]pending, error) {
	entries, err := os.ReadDir(dir.src)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir.src, err)
	}
	var next []pending
	for _, e := range entries {
		name := e.Name()
		if pathmatch.IsIgnored(name, false, opts.IgnoreHidden, opts.IgnoreVCS) {
			continue
		}
		srcPath := filepath.Join(dir.src, name)
		dstPath := filepath.Join(dir.dst, name)
		if opts.Exclude.Contains(srcPath) {
			if !opts.AdvisoryExclude {
				continue
			}
			c.logger.Warn("copying excluded path", "path", srcPath)
		}

		k, resolved, err := classify(e, srcPath, opts.FollowSymlinks)
		if err != nil {
			return nil, err
		}
		if c.gitignored(opts.Gitignore, srcPath, k == kindDir) {
			continue
		}
		switch k {
		case kindDir:
			if c.guarded(resolved, dstRoot, visited, opts.Skip) {
				continue
			}
			visited[resolved] = true
			if err := ensureDir(dstPath); err != nil {
				return nil, err
			}
			next = append(next, pending{src: resolved, dst: dstPath})
		case kindSymlink:
			g.Go(func() error { return c.copySymlink(srcPath, dstPath) })
		case kindFile:
			g.Go(func() error { return c.copyFile(resolved, dstPath) })
		default:
			c.logger.Debug("skipping special file", "path", srcPath)
		}
	}
	return next, nil
}

// guarded reports whether the directory must not be entered: it is the
// destination itself (or below it), an explicitly skipped path, or already
// visited through a symlink.
func (c *Copier) guarded(dir, dstRoot string, visited map[string]bool, skip []string) bool {
	if pathmatch.Within(dir, dstRoot) {
		c.logger.Debug("not copying destination into itself", "path", dir)
		return true
	}
	for _, s := range skip {
		if pathmatch.Within(dir, s) {
			return true
		}
	}
	return visited[dir]
}

func (c *Copier) gitignored(g *pathmatch.Gitignore, p string, isDir bool) bool {
	if g == nil {
		return false
	}
	rel, err := filepath.Rel(g.Root(), p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return g.Match(rel, isDir)
}

// CopyFile copies one file or symlink to dst, creating parent directories.
func (c *Copier) CopyFile(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return c.copySymlink(src, dst)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", src)
	}
	return c.copyFile(src, dst)
}
