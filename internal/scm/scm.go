// Package scm fetches a git repository at a given revision so that it can be
// archived.
package scm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/flarebyte/roast/internal/logging"
)

// DefaultDepth is the clone depth used when none is given.
const DefaultDepth = 1

// Clone clones url into dir with every tag. A depth above zero makes the
// clone shallow.
func Clone(ctx context.Context, url, dir string, depth int) (*gogit.Repository, error) {
	opts := &gogit.CloneOptions{
		URL:  url,
		Tags: gogit.AllTags,
	}
	if depth > 0 {
		opts.Depth = depth
	}
	repo, err := gogit.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to clone %s", url))
	}
	return repo, nil
}

// Open opens the repository at dir.
func Open(dir string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to open repository %s", dir))
	}
	return repo, nil
}

// Checkout resolves revision (branch, tag, remote branch or hash), force
// checks it out and brings submodules up to date. An empty revision keeps
// the current HEAD. It returns the checked out commit hash.
func Checkout(ctx context.Context, repo *gogit.Repository, revision string, logger *slog.Logger) (plumbing.Hash, error) {
	logger = logging.OrDiscard(logger)
	hash, err := resolve(repo, revision)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, "failed to open worktree")
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return plumbing.ZeroHash, wrapError(err, fmt.Sprintf("failed to check out %s", revision))
	}
	logger.Debug("checked out revision", "revision", revision, "hash", hash.String())

	subs, err := wt.Submodules()
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, "failed to list submodules")
	}
	if len(subs) > 0 {
		logger.Info("updating submodules", "count", len(subs))
		err := subs.UpdateContext(ctx, &gogit.SubmoduleUpdateOptions{
			Init:              true,
			RecurseSubmodules: gogit.DefaultSubmoduleRecursionDepth,
		})
		if err != nil {
			return plumbing.ZeroHash, wrapError(err, "failed to update submodules")
		}
	}
	return hash, nil
}

func resolve(repo *gogit.Repository, revision string) (plumbing.Hash, error) {
	if revision == "" {
		head, err := repo.Head()
		if err != nil {
			return plumbing.ZeroHash, wrapError(err, "failed to resolve HEAD")
		}
		return head.Hash(), nil
	}
	candidates := []string{revision, "refs/tags/" + revision, "refs/remotes/origin/" + revision}
	var firstErr error
	for _, c := range candidates {
		h, err := repo.ResolveRevision(plumbing.Revision(c))
		if err == nil {
			return *h, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return plumbing.ZeroHash, wrapError(firstErr, fmt.Sprintf("failed to resolve revision %q", revision))
}

// RepoName returns the last path element of a repository URL without the
// ".git" suffix.
func RepoName(rawURL string) string {
	s := strings.TrimRight(strings.TrimSpace(rawURL), "/")
	if u, err := url.Parse(s); err == nil && u.Path != "" {
		s = u.Path
	} else if i := strings.LastIndex(s, ":"); i >= 0 {
		// scp-like git@host:org/repo.git
		s = s[i+1:]
	}
	name := strings.TrimSuffix(path.Base(s), ".git")
	if name == "" || name == "." || name == "/" {
		return "repository"
	}
	return name
}

// DefaultName builds "<repo>-<version>" with characters that do not belong
// in a file name replaced.
func DefaultName(repoName, version string) string {
	version = strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(version)
	if version == "" {
		return repoName
	}
	return repoName + "-" + version
}

// wrapError adds context while keeping the go-git error chain intact.
func wrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		return fmt.Errorf("%s: reference not found: %w", context, err)
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		return fmt.Errorf("%s: repository does not exist: %w", context, err)
	default:
		return fmt.Errorf("%s: %w", context, err)
	}
}
