package git_local

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/davarch/ci-status/internal/domain"
)

// Repo answers local repository queries with go-git. The repository is
// reopened on every call so branch switches and fetches are picked up.
// Linked worktrees read remotes and refs from the common git dir.
type Repo struct {
	dir string
}

func New(dir string) *Repo {
	if dir == "" {
		dir = "."
	}
	return &Repo{dir: dir}
}

func (r *Repo) open() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(r.dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", r.dir, err)
	}
	return repo, nil
}

func (r *Repo) Remotes() ([]string, error) {
	repo, err := r.open()
	if err != nil {
		return nil, err
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(remotes))
	for _, rm := range remotes {
		names = append(names, rm.Config().Name)
	}
	sort.Strings(names)

	return names, nil
}

func (r *Repo) RemoteURL(name string) (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}

	remote, err := repo.Remote(name)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return "", fmt.Errorf("%w: %q", domain.ErrNoRemote, name)
	}
	if err != nil {
		return "", err
	}

	cfg := remote.Config()
	if len(cfg.URLs) == 0 {
		return "", fmt.Errorf("%w: %q has no url", domain.ErrNoRemote, name)
	}

	return strings.TrimSpace(cfg.URLs[0]), nil
}

func (r *Repo) CurrentBranch() (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	if !head.Name().IsBranch() {
		return "", domain.ErrDetachedHead
	}

	return head.Name().Short(), nil
}

func (r *Repo) ResolveRef(ref string) (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", fmt.Errorf("%w: %s", domain.ErrRefNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", ref, err)
	}

	return hash.String(), nil
}
