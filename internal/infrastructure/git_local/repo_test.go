package git_local

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/davarch/ci-status/internal/domain"
)

func initRepo(t *testing.T) (string, plumbing.Hash) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("README"); err != nil {
		t.Fatalf("add: %v", err)
	}

	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	return dir, hash
}

func TestRepo_EmptyRemotes(t *testing.T) {
	dir, _ := initRepo(t)

	names, err := New(dir).Remotes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected no remotes, got %v", names)
	}

	_, err = New(dir).RemoteURL("origin")
	if !errors.Is(err, domain.ErrNoRemote) {
		t.Errorf("expected ErrNoRemote, got %v", err)
	}
}

func TestRepo_RemotesBranchAndRemoteRef(t *testing.T) {
	dir, hash := initRepo(t)

	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for name, u := range map[string]string{
		"upstream": "git@gitlab.example.com:upstream/project.git",
		"origin":   "git@gitlab.example.com:group/project.git",
	} {
		if _, err := repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{u}}); err != nil {
			t.Fatalf("create remote %s: %v", name, err)
		}
	}

	r := New(filepath.Join(dir))

	names, err := r.Remotes()
	if err != nil {
		t.Fatalf("Remotes: %v", err)
	}
	if len(names) != 2 || names[0] != "origin" || names[1] != "upstream" {
		t.Errorf("Remotes = %v", names)
	}

	u, err := r.RemoteURL("origin")
	if err != nil || u != "git@gitlab.example.com:group/project.git" {
		t.Errorf("RemoteURL = %q, %v", u, err)
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "master" {
		t.Errorf("branch = %q, want master", branch)
	}

	if _, err := r.ResolveRef("origin/master"); !errors.Is(err, domain.ErrRefNotFound) {
		t.Errorf("expected ErrRefNotFound before push, got %v", err)
	}

	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", "master"), hash)
	if err := repo.Storer.SetReference(ref); err != nil {
		t.Fatalf("set remote ref: %v", err)
	}

	sha, err := r.ResolveRef("origin/master")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if sha != hash.String() {
		t.Errorf("sha = %s, want %s", sha, hash)
	}
}

func TestRepo_DetachedHead(t *testing.T) {
	dir, hash := initRepo(t)

	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, hash)); err != nil {
		t.Fatalf("detach: %v", err)
	}

	if _, err := New(dir).CurrentBranch(); !errors.Is(err, domain.ErrDetachedHead) {
		t.Errorf("expected ErrDetachedHead, got %v", err)
	}
}

func TestRepo_NotARepository(t *testing.T) {
	if _, err := New(t.TempDir()).Remotes(); err == nil {
		t.Error("expected error outside a repository")
	}
}

// addLinkedWorktree lays out what `git worktree add -b <branch>` leaves on
// disk: a private gitdir under .git/worktrees pointing back at the common dir.
func addLinkedWorktree(t *testing.T, mainDir, name, branch string) string {
	t.Helper()

	wt := filepath.Join(t.TempDir(), name)
	gitDir := filepath.Join(mainDir, ".git", "worktrees", name)
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(wt, 0o755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(gitDir, "HEAD"):      "ref: refs/heads/" + branch + "\n",
		filepath.Join(gitDir, "commondir"): "../..\n",
		filepath.Join(gitDir, "gitdir"):    filepath.Join(wt, ".git") + "\n",
		filepath.Join(wt, ".git"):          "gitdir: " + gitDir + "\n",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	return wt
}

func TestRepo_LinkedWorktree(t *testing.T) {
	dir, hash := initRepo(t)

	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@gitlab.example.com:group/project.git"},
	}); err != nil {
		t.Fatalf("create remote: %v", err)
	}
	for _, ref := range []*plumbing.Reference{
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("feat"), hash),
		plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", "feat"), hash),
	} {
		if err := repo.Storer.SetReference(ref); err != nil {
			t.Fatalf("set %s: %v", ref.Name(), err)
		}
	}

	r := New(addLinkedWorktree(t, dir, "feat-wt", "feat"))

	names, err := r.Remotes()
	if err != nil {
		t.Fatalf("Remotes: %v", err)
	}
	if len(names) != 1 || names[0] != "origin" {
		t.Errorf("Remotes = %v, want [origin]", names)
	}

	u, err := r.RemoteURL("origin")
	if err != nil || u != "git@gitlab.example.com:group/project.git" {
		t.Errorf("RemoteURL = %q, %v", u, err)
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "feat" {
		t.Errorf("branch = %q, want feat", branch)
	}

	sha, err := r.ResolveRef("origin/feat")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if sha != hash.String() {
		t.Errorf("sha = %s, want %s", sha, hash)
	}
}
