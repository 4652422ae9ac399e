package application

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/davarch/ci-status/internal/domain"
)

const defaultRemote = "origin"

// sshRemote matches <user>@<host>:<path>.git. The path must contain at
// least one slash; nested groups are kept whole.
var sshRemote = regexp.MustCompile(`^[^@\s/]+@([A-Za-z0-9.\-]+):([^\s:]+/[^\s:]+?)\.git/?$`)

type IdentityResolver struct {
	repo domain.Repository
}

func NewIdentityResolver(repo domain.Repository) *IdentityResolver {
	return &IdentityResolver{repo: repo}
}

// Resolve reads the remote, branch and pushed commit of the checkout. An
// empty override picks origin when present, otherwise the first remote.
func (r *IdentityResolver) Resolve(override string) (domain.RepositoryIdentity, error) {
	remote, err := r.remoteName(override)
	if err != nil {
		return domain.RepositoryIdentity{}, err
	}

	rawURL, err := r.repo.RemoteURL(remote)
	if err != nil {
		return domain.RepositoryIdentity{}, err
	}

	host, project, err := ParseRemoteURL(rawURL)
	if err != nil {
		return domain.RepositoryIdentity{}, fmt.Errorf("remote %s: %w", remote, err)
	}

	branch, err := r.repo.CurrentBranch()
	if err != nil {
		return domain.RepositoryIdentity{}, err
	}

	sha, err := r.repo.ResolveRef(remote + "/" + branch)
	if err != nil {
		return domain.RepositoryIdentity{}, err
	}

	return domain.RepositoryIdentity{
		RemoteName:  remote,
		GitHost:     host,
		ProjectPath: project,
		Branch:      branch,
		CommitSHA:   sha,
	}, nil
}

func (r *IdentityResolver) remoteName(override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		return override, nil
	}

	names, err := r.repo.Remotes()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", domain.ErrNoRemote
	}

	for _, n := range names {
		if n == defaultRemote {
			return n, nil
		}
	}
	return names[0], nil
}

// ParseRemoteURL splits an SSH-style remote into host and owner/repo path.
func ParseRemoteURL(raw string) (host, project string, err error) {
	m := sshRemote.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", domain.ErrNoMatch, raw)
	}
	return m[1], m[2], nil
}
