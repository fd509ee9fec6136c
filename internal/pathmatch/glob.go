package pathmatch

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveGlob expands pattern on the filesystem. A plain path that exists is
// returned as is. When several paths match, the lexicographically greatest
// wins and a warning lists the candidates.
func ResolveGlob(pattern string, logger *slog.Logger) (string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no path matches %q", pattern)
	}
	sort.Strings(matches)
	picked := matches[len(matches)-1]
	if len(matches) > 1 && logger != nil {
		logger.Warn("multiple paths match, using the last one", "pattern", pattern, "matches", matches, "picked", picked)
	}
	return picked, nil
}
