package pathmatch

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Canonicalize returns the absolute, symlink free form of p. A path that does
// not exist yet is returned absolute and cleaned.
func Canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", p, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return filepath.Clean(abs), nil
	}
	return resolved, nil
}

// ResolveAgainst joins a relative p onto root and canonicalizes the result.
// Absolute paths are canonicalized as they are.
func ResolveAgainst(root, p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return Canonicalize(p)
}

// Within reports whether p equals base or lies below it. Both paths must be
// clean.
func Within(p, base string) bool {
	if p == base {
		return true
	}
	if !strings.HasSuffix(base, string(filepath.Separator)) {
		base += string(filepath.Separator)
	}
	return strings.HasPrefix(p, base)
}
