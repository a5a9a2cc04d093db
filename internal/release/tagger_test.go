package release

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) plumbing.Hash {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)

	hash, err := wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "ci", Email: "ci@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash
}

func initRepo(t *testing.T) (*git.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return repo, dir
}

func tagTarget(t *testing.T, repo *git.Repository, tag string) plumbing.Hash {
	t.Helper()
	ref, err := repo.Tag(tag)
	require.NoError(t, err)
	return ref.Hash()
}

func TestTagger_ApplyMovesFloatingTags(t *testing.T) {
	repo, dir := initRepo(t)
	first := commitFile(t, repo, dir, "a.txt", "1")

	tagger := NewTagger(repo, "", nil)
	plans := []Plan{{Package: Package{Name: "api"}, Create: "api@1.0.0", Move: []string{"api@1.0", "api@1"}}}
	require.NoError(t, tagger.Apply(context.Background(), plans, false))

	second := commitFile(t, repo, dir, "a.txt", "2")
	plans = []Plan{{Package: Package{Name: "api"}, Create: "api@1.0.1", Move: []string{"api@1.0", "api@1"}}}
	require.NoError(t, tagger.Apply(context.Background(), plans, false))

	assert.Equal(t, first, tagTarget(t, repo, "api@1.0.0"))
	assert.Equal(t, second, tagTarget(t, repo, "api@1.0.1"))
	assert.Equal(t, second, tagTarget(t, repo, "api@1.0"))
	assert.Equal(t, second, tagTarget(t, repo, "api@1"))

	tags, err := tagger.ExistingTags()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		"api@1.0.0": true,
		"api@1.0.1": true,
		"api@1.0":   true,
		"api@1":     true,
	}, tags)
}

func TestTagger_ApplyExistingVersionTagFails(t *testing.T) {
	repo, dir := initRepo(t)
	commitFile(t, repo, dir, "a.txt", "1")

	tagger := NewTagger(repo, "", nil)
	plans := []Plan{{Package: Package{Name: "api"}, Create: "api@1.0.0"}}
	require.NoError(t, tagger.Apply(context.Background(), plans, false))

	err := tagger.Apply(context.Background(), plans, false)
	assert.ErrorIs(t, err, git.ErrTagExists)
}

func TestTagger_ApplyPushes(t *testing.T) {
	remoteDir := t.TempDir()
	remote, err := git.PlainInit(remoteDir, true)
	require.NoError(t, err)

	repo, dir := initRepo(t)
	_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remoteDir}})
	require.NoError(t, err)
	head := commitFile(t, repo, dir, "a.txt", "1")

	// Floating tag already on the remote at another commit.
	older := commitFile(t, repo, dir, "b.txt", "1")
	_, err = repo.CreateTag("api@1", older, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{"refs/heads/*:refs/heads/*", "refs/tags/*:refs/tags/*"},
	}))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: head}))

	tagger := NewTagger(repo, "origin", nil)
	plans := []Plan{{Package: Package{Name: "api"}, Create: "api@1.2.0", Move: []string{"api@1.2", "api@1"}}}
	require.NoError(t, tagger.Apply(context.Background(), plans, true))

	for _, tag := range []string{"api@1.2.0", "api@1.2", "api@1"} {
		assert.Equal(t, head, tagTarget(t, remote, tag), tag)
	}
}

func TestTagger_ApplyKeepsRemoteVersionTag(t *testing.T) {
	remoteDir := t.TempDir()
	remote, err := git.PlainInit(remoteDir, true)
	require.NoError(t, err)

	// Another clone published api@1.0.0 on a commit this checkout never fetched.
	published, publishedDir := initRepo(t)
	_, err = published.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remoteDir}})
	require.NoError(t, err)
	released := commitFile(t, published, publishedDir, "a.txt", "released")
	_, err = published.CreateTag("api@1.0.0", released, nil)
	require.NoError(t, err)
	require.NoError(t, published.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{"refs/tags/*:refs/tags/*"},
	}))

	repo, dir := initRepo(t)
	_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remoteDir}})
	require.NoError(t, err)
	commitFile(t, repo, dir, "a.txt", "local")

	tagger := NewTagger(repo, "origin", nil)
	plans := []Plan{{Package: Package{Name: "api"}, Create: "api@1.0.0", Move: []string{"api@1.0", "api@1"}}}
	require.Error(t, tagger.Apply(context.Background(), plans, true))

	assert.Equal(t, released, tagTarget(t, remote, "api@1.0.0"))
}

func TestTagRefSpec(t *testing.T) {
	assert.Equal(t, config.RefSpec("refs/tags/api@1.0.0:refs/tags/api@1.0.0"), tagRefSpec("api@1.0.0", false))
	assert.Equal(t, config.RefSpec("+refs/tags/api@1:refs/tags/api@1"), tagRefSpec("api@1", true))
	assert.True(t, tagRefSpec("api@1", true).IsForceUpdate())
	assert.False(t, tagRefSpec("api@1.0.0", false).IsForceUpdate())
}

func TestOpenTagger_NotARepo(t *testing.T) {
	_, err := OpenTagger(t.TempDir(), "origin", nil)
	assert.Error(t, err)
}

func TestTagger_ApplyEmpty(t *testing.T) {
	repo, _ := initRepo(t)
	// No commits: Apply must not resolve HEAD when there is nothing to do.
	assert.NoError(t, NewTagger(repo, "", nil).Apply(context.Background(), nil, true))
}
