package scm

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
	when time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return &fixture{t: t, dir: dir, repo: repo, when: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fixture) signature() *object.Signature {
	f.when = f.when.Add(time.Minute)
	return &object.Signature{Name: "Test User", Email: "test@example.com", When: f.when}
}

func (f *fixture) commit(name, content, msg string) plumbing.Hash {
	f.t.Helper()
	require.NoError(f.t, os.WriteFile(filepath.Join(f.dir, name), []byte(content), 0o644))
	wt, err := f.repo.Worktree()
	require.NoError(f.t, err)
	_, err = wt.Add(name)
	require.NoError(f.t, err)
	h, err := wt.Commit(msg, &gogit.CommitOptions{Author: f.signature()})
	require.NoError(f.t, err)
	return h
}

func TestDescribeWithoutTags(t *testing.T) {
	f := newFixture(t)
	h := f.commit("a.txt", "a", "first")

	got, err := Describe(f.repo)
	require.NoError(t, err)
	assert.Equal(t, h.String()[:7], got)
}

func TestDescribeDistanceToTag(t *testing.T) {
	f := newFixture(t)
	c1 := f.commit("a.txt", "1", "first")
	_, err := f.repo.CreateTag("v0.1.0", c1, nil)
	require.NoError(t, err)
	f.commit("a.txt", "2", "second")
	c3 := f.commit("a.txt", "3", "third")

	got, err := Describe(f.repo)
	require.NoError(t, err)
	assert.Equal(t, "v0.1.0-2-g"+c3.String()[:7], got)

	_, err = f.repo.CreateTag("v1.0.0", c3, &gogit.CreateTagOptions{Message: "release", Tagger: f.signature()})
	require.NoError(t, err)
	got, err = Describe(f.repo)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0-0-g"+c3.String()[:7], got)
}

func TestChangelog(t *testing.T) {
	f := newFixture(t)
	c1 := f.commit("a.txt", "1", "Add a\n\nlonger body")
	c2 := f.commit("b.txt", "2", "Add b")

	got, err := Changelog(f.repo, 0)
	require.NoError(t, err)
	assert.Equal(t, "- Add b ("+c2.String()[:7]+")\n- Add a ("+c1.String()[:7]+")\n", got)

	got, err = Changelog(f.repo, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(got, "\n"))
}

func TestCheckout(t *testing.T) {
	f := newFixture(t)
	c1 := f.commit("a.txt", "old", "first")
	_, err := f.repo.CreateTag("v1", c1, nil)
	require.NoError(t, err)
	c2 := f.commit("a.txt", "new", "second")

	got, err := Checkout(context.Background(), f.repo, "v1", nil)
	require.NoError(t, err)
	assert.Equal(t, c1, got)
	b, err := os.ReadFile(filepath.Join(f.dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))

	got, err = Checkout(context.Background(), f.repo, c2.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, c2, got)
	b, err = os.ReadFile(filepath.Join(f.dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))

	_, err = Checkout(context.Background(), f.repo, "does-not-exist", nil)
	assert.Error(t, err)
}

func TestCheckoutEmptyRevisionKeepsHead(t *testing.T) {
	f := newFixture(t)
	h := f.commit("a.txt", "a", "first")

	repo, err := Open(f.dir)
	require.NoError(t, err)
	got, err := Checkout(context.Background(), repo, "", nil)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, gogit.ErrRepositoryNotExists)
}

func TestRepoName(t *testing.T) {
	cases := map[string]string{
		"https://github.com/openSUSE/roast.git":   "roast",
		"https://github.com/openSUSE/roast/":      "roast",
		"git@github.com:openSUSE/obs-service.git": "obs-service",
		"/srv/git/project":                        "project",
		"":                                        "repository",
	}
	for in, want := range cases {
		assert.Equal(t, want, RepoName(in), in)
	}
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "roast-v1.2.3", DefaultName("roast", "v1.2.3"))
	assert.Equal(t, "roast-feature-x", DefaultName("roast", "feature/x"))
	assert.Equal(t, "roast", DefaultName("roast", ""))
}
