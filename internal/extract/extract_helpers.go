package extract

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/flarebyte/roast/internal/pathmatch"
)

// safeJoin ensures that the resulting path is within rootAbs.
func safeJoin(rootAbs, member string) (string, error) {
	full := filepath.Join(rootAbs, filepath.FromSlash(member))
	if !pathmatch.Within(full, rootAbs) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, member)
	}
	return full, nil
}

// ensureParentDir creates the parent of fullPath and checks that, once
// symlinks are resolved, it is still below rootAbs.
func ensureParentDir(rootAbs, fullPath string) error {
	parent := filepath.Dir(fullPath)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", fullPath, err)
	}
	resolved, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", parent, err)
	}
	if !pathmatch.Within(resolved, rootAbs) {
		return fmt.Errorf("%w: %s", ErrPathEscape, fullPath)
	}
	return nil
}

// extractDir creates fullPath. An existing symlink at fullPath must resolve
// below rootAbs.
func extractDir(rootAbs, fullPath string, mode fs.FileMode) error {
	if err := os.MkdirAll(fullPath, mode|0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
	}
	resolved, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", fullPath, err)
	}
	if !pathmatch.Within(resolved, rootAbs) {
		return fmt.Errorf("%w: %s", ErrPathEscape, fullPath)
	}
	return nil
}

// removeExisting clears a non directory entry sitting at fullPath.
func removeExisting(fullPath string) error {
	info, err := os.Lstat(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", fullPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot replace directory %s", fullPath)
	}
	return os.Remove(fullPath)
}

func extractRegularFile(tr *tar.Reader, fullPath string, mode fs.FileMode, hdr *tar.Header) error {
	if err := removeExisting(fullPath); err != nil {
		return err
	}
	out, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", fullPath, err)
	}
	if _, err := io.Copy(out, tr); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %s: %w", fullPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", fullPath, err)
	}
	if err := os.Chmod(fullPath, mode); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", fullPath, err)
	}
	if !hdr.ModTime.IsZero() {
		if err := os.Chtimes(fullPath, hdr.ModTime, hdr.ModTime); err != nil {
			return fmt.Errorf("failed to set times on %s: %w", fullPath, err)
		}
	}
	return nil
}

func extractSymlink(fullPath, target string) error {
	if err := removeExisting(fullPath); err != nil {
		return err
	}
	if err := os.Symlink(target, fullPath); err != nil {
		return fmt.Errorf("failed to create link %s: %w", fullPath, err)
	}
	return nil
}

// isDone returns a wrapped context cancellation error if ctx is done.
func isDone(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("extraction canceled: %w", ctx.Err())
	default:
		return nil
	}
}
