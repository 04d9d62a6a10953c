package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func commit(t *testing.T, dir string, repo *gogit.Repository) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("a.txt")
	require.NoError(t, err)
	h, err := wt.Commit("init", &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return h.String()
}

func TestRepoMetadata(t *testing.T) {
	dir, repo := initRepo(t)
	hash := commit(t, dir, repo)
	_, err := repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"git@github.com:redactyl/evgate.git"}})
	require.NoError(t, err)

	sub := filepath.Join(dir, "evidence")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	md := RepoMetadata(sub)
	assert.Equal(t, hash, md.Commit)
	assert.Equal(t, "master", md.Branch)
	assert.Equal(t, "redactyl/evgate", md.Repo)
}

func TestRepoMetadata_Unborn(t *testing.T) {
	dir, _ := initRepo(t)
	md := RepoMetadata(dir)
	assert.Empty(t, md.Commit)
	assert.Equal(t, "master", md.Branch)
}

func TestRepoMetadata_NotARepo(t *testing.T) {
	assert.Equal(t, Metadata{}, RepoMetadata(t.TempDir()))
	assert.Equal(t, Metadata{}, RepoMetadata(filepath.Join(t.TempDir(), "missing")))
}

func TestShortRepo(t *testing.T) {
	cases := map[string]string{
		"git@github.com:org/name.git":      "org/name",
		"https://github.com/org/name.git":  "org/name",
		"https://gitlab.example.com/g/s/p": "g/s/p",
		"ssh://git@host:22/org/name.git":   "org/name",
	}
	for in, want := range cases {
		assert.Equal(t, want, shortRepo(in), in)
	}
}
