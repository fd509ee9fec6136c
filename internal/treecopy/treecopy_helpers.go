package treecopy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

type kind int

const (
	kindOther kind = iota
	kindDir
	kindFile
	kindSymlink
)

// classify returns the kind of entry and, for entries that are followed,
// the canonical path to read from.
func classify(e fs.DirEntry, p string, follow bool) (kind, string, error) {
	t := e.Type()
	switch {
	case t.IsDir():
		return kindDir, p, nil
	case t.IsRegular():
		return kindFile, p, nil
	case t&fs.ModeSymlink != 0:
		if !follow {
			return kindSymlink, p, nil
		}
		resolved, err := filepath.EvalSymlinks(p)
		if err != nil {
			// broken link
			return kindSymlink, p, nil
		}
		info, err := os.Stat(resolved)
		if err != nil {
			return kindOther, p, fmt.Errorf("failed to stat %s: %w", resolved, err)
		}
		if info.IsDir() {
			return kindDir, resolved, nil
		}
		if info.Mode().IsRegular() {
			return kindFile, resolved, nil
		}
	}
	return kindOther, p, nil
}

// ensureDir creates dir; an existing directory counts as success.
func ensureDir(dir string) error {
	err := os.Mkdir(dir, 0o755)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		info, serr := os.Stat(dir)
		if serr == nil && info.IsDir() {
			return nil
		}
		return fmt.Errorf("destination exists and is not a directory: %s", dir)
	}
	return fmt.Errorf("failed to create directory %s: %w", dir, err)
}

// prepareTarget warns about overwrites and removes a symlink sitting at dst
// so that writes never go through it.
func (c *Copier) prepareTarget(dst string) error {
	info, err := os.Lstat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", dst, err)
	}
	c.logger.Warn("overwriting existing path", "path", dst)
	if info.IsDir() {
		return fmt.Errorf("cannot overwrite directory %s", dst)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("failed to replace %s: %w", dst, err)
		}
	}
	return nil
}

func (c *Copier) copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if err := c.prepareTarget(dst); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	perm := info.Mode().Perm()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	if err := os.Chmod(dst, perm); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", dst, err)
	}
	mt := info.ModTime()
	if err := os.Chtimes(dst, mt, mt); err != nil {
		return fmt.Errorf("failed to set times on %s: %w", dst, err)
	}
	return nil
}

func (c *Copier) copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read link %s: %w", src, err)
	}
	if err := c.prepareTarget(dst); err != nil {
		return err
	}
	if _, err := os.Lstat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("failed to replace %s: %w", dst, err)
		}
	}
	if err := os.Symlink(target, dst); err != nil {
		return fmt.Errorf("failed to create link %s: %w", dst, err)
	}
	return nil
}

// isDone returns a wrapped context error once ctx is done.
func isDone(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("copy canceled: %w", ctx.Err())
	default:
		return nil
	}
}
