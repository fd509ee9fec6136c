package pathmatch

import (
	"log/slog"
	"os"
	"sort"
	"strings"
)

// ExcludeSet holds canonical paths whose subtrees are left out of a copy.
type ExcludeSet struct {
	paths []string
}

// NewExcludeSet canonicalizes every entry against root. Empty entries and
// entries that do not exist are dropped; the latter are logged at debug level.
func NewExcludeSet(root string, entries []string, logger *slog.Logger) (ExcludeSet, error) {
	var set ExcludeSet
	seen := map[string]bool{}
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			continue
		}
		c, err := ResolveAgainst(root, e)
		if err != nil {
			return ExcludeSet{}, err
		}
		if _, err := os.Lstat(c); err != nil {
			if logger != nil {
				logger.Debug("dropping exclude path that does not exist", "path", e, "resolved", c)
			}
			continue
		}
		if !seen[c] {
			seen[c] = true
			set.paths = append(set.paths, c)
		}
	}
	sort.Strings(set.paths)
	return set, nil
}

// Contains reports whether the canonical path p is, or is inside, an
// excluded path.
func (s ExcludeSet) Contains(p string) bool {
	for _, e := range s.paths {
		if Within(p, e) {
			return true
		}
	}
	return false
}

// Len returns the number of excluded paths.
func (s ExcludeSet) Len() int { return len(s.paths) }

// Paths returns a copy of the excluded paths in sorted order.
func (s ExcludeSet) Paths() []string {
	return append([]string(nil), s.paths...)
}

// IsExcluded canonicalizes p and checks it against set.
func IsExcluded(p string, set ExcludeSet) bool {
	if set.Len() == 0 {
		return false
	}
	c, err := Canonicalize(p)
	if err != nil {
		return false
	}
	return set.Contains(c)
}
