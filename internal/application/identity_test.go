package application

import (
	"errors"
	"testing"

	"github.com/davarch/ci-status/internal/domain"
)

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		wantErr     bool
		wantHost    string
		wantProject string
	}{
		{name: "gitlab ssh", url: "git@gitlab.com:owner/repo.git", wantHost: "gitlab.com", wantProject: "owner/repo"},
		{name: "self hosted", url: "git@git.example.org:sn/SensorNetwork.git", wantHost: "git.example.org", wantProject: "sn/SensorNetwork"},
		{name: "nested group", url: "deploy@gitlab.example.com:group/sub/repo.git", wantHost: "gitlab.example.com", wantProject: "group/sub/repo"},
		{name: "dotted repo", url: "git@gitlab.com:my.team/my-repo.js.git", wantHost: "gitlab.com", wantProject: "my.team/my-repo.js"},
		{name: "https", url: "https://gitlab.com/owner/repo.git", wantErr: true},
		{name: "https with user", url: "https://user@gitlab.com/owner/repo.git", wantErr: true},
		{name: "ssh scheme", url: "ssh://git@gitlab.com:2222/owner/repo.git", wantErr: true},
		{name: "no .git", url: "git@gitlab.com:owner/repo", wantErr: true},
		{name: "no owner", url: "git@gitlab.com:repo.git", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, project, err := ParseRemoteURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRemoteURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, domain.ErrNoMatch) {
					t.Errorf("expected ErrNoMatch, got %v", err)
				}
				return
			}
			if host != tt.wantHost || project != tt.wantProject {
				t.Errorf("got (%q, %q), want (%q, %q)", host, project, tt.wantHost, tt.wantProject)
			}
		})
	}
}

func newRepo() *domain.MockRepository {
	return &domain.MockRepository{
		RemoteNames: []string{"backup", "origin"},
		URLs: map[string]string{
			"origin": "git@gitlab.example.com:group/project.git",
			"backup": "git@mirror.example.com:group/project.git",
			"http":   "https://gitlab.example.com/group/project.git",
		},
		Branch: "feature/x",
		Refs: map[string]string{
			"origin/feature/x": "1111111111111111111111111111111111111111",
			"backup/feature/x": "2222222222222222222222222222222222222222",
		},
	}
}

func TestResolve_PrefersOriginAndUsesRemoteRef(t *testing.T) {
	repo := newRepo()

	id, err := NewIdentityResolver(repo).Resolve("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.RepositoryIdentity{
		RemoteName:  "origin",
		GitHost:     "gitlab.example.com",
		ProjectPath: "group/project",
		Branch:      "feature/x",
		CommitSHA:   "1111111111111111111111111111111111111111",
	}
	if id != want {
		t.Errorf("got %+v, want %+v", id, want)
	}
	if len(repo.Resolved) != 1 || repo.Resolved[0] != "origin/feature/x" {
		t.Errorf("expected the tracked remote ref to be resolved, got %v", repo.Resolved)
	}
}

func TestResolve_Override(t *testing.T) {
	id, err := NewIdentityResolver(newRepo()).Resolve("backup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.RemoteName != "backup" || id.GitHost != "mirror.example.com" {
		t.Errorf("override ignored: %+v", id)
	}
}

func TestResolve_FirstRemoteWithoutOrigin(t *testing.T) {
	repo := newRepo()
	repo.RemoteNames = []string{"backup"}

	id, err := NewIdentityResolver(repo).Resolve("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.RemoteName != "backup" {
		t.Errorf("remote = %q, want backup", id.RemoteName)
	}
}

func TestResolve_Failures(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*domain.MockRepository)
		override string
		want     error
	}{
		{"no remote", func(r *domain.MockRepository) { r.RemoteNames = nil }, "", domain.ErrNoRemote},
		{"https remote", func(r *domain.MockRepository) {}, "http", domain.ErrNoMatch},
		{"detached", func(r *domain.MockRepository) { r.Branch = "" }, "", domain.ErrDetachedHead},
		{"not pushed", func(r *domain.MockRepository) { r.Refs = nil }, "", domain.ErrRefNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newRepo()
			tc.mutate(repo)

			_, err := NewIdentityResolver(repo).Resolve(tc.override)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if domain.Classify(err) != domain.FailureIdentity {
				t.Errorf("expected identity failure kind, got %q", domain.Classify(err))
			}
		})
	}
}
