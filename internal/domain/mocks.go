package domain

import (
	"context"
	"time"
)

type MockRepository struct {
	RemoteNames []string
	URLs        map[string]string
	Branch      string
	Refs        map[string]string
	Err         error
	Resolved    []string
}

func (m *MockRepository) Remotes() ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.RemoteNames, nil
}

func (m *MockRepository) RemoteURL(name string) (string, error) {
	u, ok := m.URLs[name]
	if !ok {
		return "", ErrNoRemote
	}
	return u, nil
}

func (m *MockRepository) CurrentBranch() (string, error) {
	if m.Branch == "" {
		return "", ErrDetachedHead
	}
	return m.Branch, nil
}

func (m *MockRepository) ResolveRef(ref string) (string, error) {
	m.Resolved = append(m.Resolved, ref)
	sha, ok := m.Refs[ref]
	if !ok {
		return "", ErrRefNotFound
	}
	return sha, nil
}

type MockCIClient struct {
	Pipeline    Pipeline
	Jobs        []Job
	PipelineErr error
	JobsErr     error

	PipelineCalls int
	JobsCalls     int
	LastIdentity  RepositoryIdentity
	LastPipeline  int64
}

func (m *MockCIClient) CommitPipeline(ctx context.Context, id RepositoryIdentity) (Pipeline, error) {
	m.PipelineCalls++
	m.LastIdentity = id
	if m.PipelineErr != nil {
		return Pipeline{}, m.PipelineErr
	}
	return m.Pipeline, nil
}

func (m *MockCIClient) PipelineJobs(ctx context.Context, id RepositoryIdentity, pipelineID int64) ([]Job, error) {
	m.JobsCalls++
	m.LastPipeline = pipelineID
	if m.JobsErr != nil {
		return nil, m.JobsErr
	}
	return m.Jobs, nil
}

type MockDisplay struct {
	Snapshots   []Snapshot
	Refresh     []time.Duration
	Diagnostics []string
}

func (d *MockDisplay) Show(s Snapshot, refresh time.Duration) error {
	d.Snapshots = append(d.Snapshots, s)
	d.Refresh = append(d.Refresh, refresh)
	return nil
}

func (d *MockDisplay) Diagnose(msg string) error {
	d.Diagnostics = append(d.Diagnostics, msg)
	return nil
}

type MockSink struct {
	Snapshots []Snapshot
	Err       error
}

func (c *MockSink) Write(ctx context.Context, s Snapshot) error {
	if c.Err != nil {
		return c.Err
	}
	c.Snapshots = append(c.Snapshots, s)
	return nil
}
