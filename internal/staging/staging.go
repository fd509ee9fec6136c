// Package staging assembles the temporary tree that is later archived.
//
// The tree is filled in three passes: additional paths, include paths and
// finally the filtered copy of the target. Additional and include content
// is copied even when it falls under an exclude path; the main pass honours
// every exclusion.
package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/flarebyte/roast/internal/logging"
	"github.com/flarebyte/roast/internal/pathmatch"
	"github.com/flarebyte/roast/internal/roast"
	"github.com/flarebyte/roast/internal/treecopy"
)

// TempPrefix prefixes the name of every staging directory.
const TempPrefix = ".rooooooooooaaaaaaaasssst"

// ErrIncludeNotFound is returned when an include path does not exist below
// the target. Errors wrapping it also match fs.ErrNotExist.
var ErrIncludeNotFound = errors.New("include path not found")

// Options tunes the assembler.
type Options struct {
	// TempDir is the parent of the staging directory. Empty means os.TempDir().
	TempDir        string
	Logger         *slog.Logger
	Workers        int
	FollowSymlinks bool
}

// Handle owns a staging directory. Close removes it.
type Handle struct {
	// Root is the temporary directory handed to the archiver.
	Root string
	// Workdir receives the staged content: Root, or Root/<target basename>
	// when the root is preserved.
	Workdir string

	closed bool
}

// Close removes the staging directory. It is safe to call more than once.
func (h *Handle) Close() error {
	if h == nil || h.closed {
		return nil
	}
	h.closed = true
	if err := os.RemoveAll(h.Root); err != nil {
		return fmt.Errorf("failed to remove staging directory %s: %w", h.Root, err)
	}
	return nil
}

type assembler struct {
	req     roast.Request
	logger  *slog.Logger
	copier  *treecopy.Copier
	follow  bool
	target  string
	handle  *Handle
	tmpRoot string
	exclude pathmatch.ExcludeSet
}

// Assemble builds the staging tree for req. On error nothing is left on disk.
func Assemble(ctx context.Context, req roast.Request, opts Options) (*Handle, error) {
	logger := logging.OrDiscard(opts.Logger)
	a := &assembler{
		req:    req,
		logger: logger,
		copier: treecopy.New(logger, opts.Workers),
		follow: opts.FollowSymlinks,
	}
	if err := a.prepare(opts.TempDir); err != nil {
		return nil, err
	}
	steps := []func(context.Context) error{
		a.copyAdditional,
		a.copyIncludes,
		a.copyTarget,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			if cerr := a.handle.Close(); cerr != nil {
				logger.Warn("failed to clean up staging directory", "error", cerr)
			}
			return nil, err
		}
	}
	return a.handle, nil
}

// prepare canonicalizes the target and creates the staging directory.
func (a *assembler) prepare(tempDir string) error {
	target, err := pathmatch.Canonicalize(a.req.Target)
	if err != nil {
		return err
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to read target %s: %w", a.req.Target, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("target is not a directory: %s", a.req.Target)
	}
	a.target = target

	root, err := os.MkdirTemp(tempDir, TempPrefix)
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	h := &Handle{Root: root, Workdir: root}
	if a.req.PreserveRoot {
		h.Workdir = filepath.Join(root, filepath.Base(target))
		if err := os.MkdirAll(h.Workdir, 0o755); err != nil {
			_ = h.Close()
			return fmt.Errorf("failed to create staging directory: %w", err)
		}
	}
	a.handle = h
	if a.tmpRoot, err = pathmatch.Canonicalize(root); err != nil {
		_ = h.Close()
		return err
	}

	a.exclude, err = pathmatch.NewExcludeSet(target, a.req.Exclude, a.logger)
	if err != nil {
		_ = h.Close()
		return err
	}
	a.logger.Debug("staging directory ready", "root", h.Root, "workdir", h.Workdir, "excluded", a.exclude.Paths())
	return nil
}

func (a *assembler) options(advisory bool) treecopy.Options {
	return treecopy.Options{
		IgnoreHidden:    a.req.IgnoreHidden,
		IgnoreVCS:       a.req.IgnoreVCS,
		Exclude:         a.exclude,
		AdvisoryExclude: advisory,
		Skip:            []string{a.tmpRoot},
		FollowSymlinks:  a.follow,
	}
}

func (a *assembler) copyAdditional(ctx context.Context) error {
	for _, add := range a.req.Additional {
		destDir, err := stagedPath(a.handle.Workdir, add.Dest)
		if err != nil {
			return err
		}
		if add.Dest != "" && a.exclude.Contains(filepath.Join(a.target, filepath.Clean(add.Dest))) {
			a.logger.Warn("additional path lands in an excluded directory", "path", add.Source, "dest", add.Dest)
		}

		src, err := pathmatch.Canonicalize(add.Source)
		if err != nil {
			return err
		}
		info, err := os.Stat(src)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				a.logger.Warn("additional path does not exist, skipping", "path", add.Source)
				continue
			}
			return fmt.Errorf("failed to stat additional path %s: %w", add.Source, err)
		}

		dst := filepath.Join(destDir, filepath.Base(src))
		a.logger.Debug("copying additional path", "src", src, "dst", dst)
		if info.IsDir() {
			if err := a.copier.CopyFiltered(ctx, src, dst, a.options(true)); err != nil {
				return err
			}
			continue
		}
		if err := a.copier.CopyFile(src, dst); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembler) copyIncludes(ctx context.Context) error {
	for _, inc := range a.req.Include {
		if strings.TrimSpace(inc) == "" {
			continue
		}
		src, rel, err := a.resolveInclude(inc)
		if err != nil {
			return err
		}
		info, err := os.Lstat(src)
		if err != nil {
			return fmt.Errorf("failed to stat include %s: %w", inc, err)
		}

		if a.exclude.Contains(src) {
			a.logger.Warn("including excluded path", "path", inc)
		} else if a.exclude.Contains(filepath.Dir(src)) {
			a.logger.Warn("including path from an excluded directory", "path", inc)
		}

		dst := filepath.Join(a.handle.Workdir, rel)
		a.logger.Debug("copying include", "src", src, "dst", dst)
		if info.IsDir() {
			if err := a.copier.CopyFiltered(ctx, src, dst, a.options(true)); err != nil {
				return err
			}
			continue
		}
		if err := a.copier.CopyFile(src, dst); err != nil {
			return err
		}
	}
	return nil
}

// resolveInclude returns the path of inc below the target and its relative
// form. The last element is not resolved so symlinks stay symlinks.
func (a *assembler) resolveInclude(inc string) (string, string, error) {
	p := inc
	if !filepath.IsAbs(p) {
		p = filepath.Join(a.target, p)
	}
	p = filepath.Clean(p)
	if _, err := os.Lstat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", fmt.Errorf("%w: %s: %w", ErrIncludeNotFound, inc, err)
		}
		return "", "", fmt.Errorf("failed to stat include %s: %w", inc, err)
	}
	parent, err := pathmatch.Canonicalize(filepath.Dir(p))
	if err != nil {
		return "", "", err
	}
	p = filepath.Join(parent, filepath.Base(p))
	if p == a.target || !pathmatch.Within(p, a.target) {
		return "", "", fmt.Errorf("include path is not inside the target: %s", inc)
	}
	rel, err := filepath.Rel(a.target, p)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve include %s: %w", inc, err)
	}
	return p, rel, nil
}

func (a *assembler) copyTarget(ctx context.Context) error {
	a.logger.Debug("copying target", "src", a.target, "dst", a.handle.Workdir)
	opts := a.options(false)
	if a.req.RespectGitignore {
		opts.Gitignore = pathmatch.NewGitignore(a.target)
	}
	return a.copier.CopyFiltered(ctx, a.target, a.handle.Workdir, opts)
}

// stagedPath joins a relative destination onto base, refusing destinations
// that leave it.
func stagedPath(base, dest string) (string, error) {
	if dest == "" {
		return base, nil
	}
	if filepath.IsAbs(dest) {
		return "", fmt.Errorf("additional destination must be relative: %s", dest)
	}
	p := filepath.Join(base, dest)
	if !pathmatch.Within(p, base) {
		return "", fmt.Errorf("additional destination escapes the staging tree: %s", dest)
	}
	return p, nil
}
