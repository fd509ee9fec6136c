package scm

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const shortHashLen = 7

func short(h plumbing.Hash) string {
	return h.String()[:shortHashLen]
}

// tagsByCommit maps commit hashes to the names of the tags pointing at them.
func tagsByCommit(repo *gogit.Repository) (map[plumbing.Hash][]string, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, wrapError(err, "failed to list tags")
	}
	out := map[plumbing.Hash][]string{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if tag, err := repo.TagObject(target); err == nil {
			c, err := tag.Commit()
			if err != nil {
				return nil
			}
			target = c.Hash
		}
		out[target] = append(out[target], ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, wrapError(err, "failed to read tags")
	}
	for h := range out {
		sort.Strings(out[h])
	}
	return out, nil
}

// Describe names HEAD as "<tag>-<distance>-g<short hash>" using the nearest
// tag reachable from it, or as the short hash when no tag is reachable.
func Describe(repo *gogit.Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", wrapError(err, "failed to resolve HEAD")
	}
	tags, err := tagsByCommit(repo)
	if err != nil {
		return "", err
	}

	type step struct {
		hash  plumbing.Hash
		depth int
	}
	seen := map[plumbing.Hash]bool{head.Hash(): true}
	queue := []step{{hash: head.Hash()}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if names, ok := tags[cur.hash]; ok {
			return fmt.Sprintf("%s-%d-g%s", names[len(names)-1], cur.depth, short(head.Hash())), nil
		}
		c, err := repo.CommitObject(cur.hash)
		if err != nil {
			if errors.Is(err, plumbing.ErrObjectNotFound) {
				// shallow history
				continue
			}
			return "", wrapError(err, "failed to read commit")
		}
		for _, p := range c.ParentHashes {
			if !seen[p] {
				seen[p] = true
				queue = append(queue, step{hash: p, depth: cur.depth + 1})
			}
		}
	}
	return short(head.Hash()), nil
}

// Changelog lists up to limit commits reachable from HEAD, newest first, as
// "- <subject> (<short hash>)" lines. limit <= 0 means no limit.
func Changelog(repo *gogit.Repository, limit int) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", wrapError(err, "failed to resolve HEAD")
	}
	iter, err := repo.Log(&gogit.LogOptions{From: head.Hash(), Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return "", wrapError(err, "failed to walk history")
	}
	defer iter.Close()

	var b strings.Builder
	n := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && n >= limit {
			return storer.ErrStop
		}
		subject, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
		fmt.Fprintf(&b, "- %s (%s)\n", strings.TrimSpace(subject), short(c.Hash))
		n++
		return nil
	})
	if err != nil && !errors.Is(err, plumbing.ErrObjectNotFound) {
		return "", wrapError(err, "failed to walk history")
	}
	return b.String(), nil
}
