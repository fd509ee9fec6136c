package pathmatch

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Gitignore matches paths below a root against the .gitignore files found
// in the root and in every directory leading to the path. It is not safe for
// concurrent use.
type Gitignore struct {
	root  string
	cache map[string][]gitignore.Pattern
}

// NewGitignore returns a matcher for the tree at root.
func NewGitignore(root string) *Gitignore {
	return &Gitignore{root: root, cache: map[string][]gitignore.Pattern{}}
}

// Root returns the directory the matcher was built for.
func (g *Gitignore) Root() string { return g.root }

// Match reports whether rel, relative to the root, is ignored.
func (g *Gitignore) Match(rel string, isDir bool) bool {
	if rel == "." || rel == "" {
		return false
	}
	var patterns []gitignore.Pattern
	for _, d := range dirsForRel(rel) {
		patterns = append(patterns, g.patternsIn(d)...)
	}
	if len(patterns) == 0 {
		return false
	}
	return gitignore.NewMatcher(patterns).Match(strings.Split(filepath.ToSlash(rel), "/"), isDir)
}

// patternsIn reads the .gitignore of the directory d, relative to the root.
func (g *Gitignore) patternsIn(d string) []gitignore.Pattern {
	if p, ok := g.cache[d]; ok {
		return p
	}
	var patterns []gitignore.Pattern
	b, err := os.ReadFile(filepath.Join(g.root, d, ".gitignore"))
	if err == nil {
		var base []string
		if d != "." {
			base = strings.Split(filepath.ToSlash(d), "/")
		}
		for _, line := range strings.Split(string(b), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, base))
		}
	}
	g.cache[d] = patterns
	return patterns
}

// dirsForRel returns the directories from "." down to the parent of rel.
func dirsForRel(rel string) []string {
	dir := filepath.Dir(rel)
	dirs := []string{"."}
	if dir == "." {
		return dirs
	}
	cur := ""
	for _, part := range strings.Split(dir, string(os.PathSeparator)) {
		cur = filepath.Join(cur, part)
		dirs = append(dirs, cur)
	}
	return dirs
}
