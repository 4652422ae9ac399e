package domain

import (
	"context"
	"time"
)

// Repository answers the local version-control queries needed to build an identity.
type Repository interface {
	Remotes() ([]string, error)
	RemoteURL(name string) (string, error)
	CurrentBranch() (string, error)
	ResolveRef(ref string) (string, error)
}

type CIClient interface {
	CommitPipeline(ctx context.Context, id RepositoryIdentity) (Pipeline, error)
	PipelineJobs(ctx context.Context, id RepositoryIdentity, pipelineID int64) ([]Job, error)
}

// Display renders one cycle: either the tables, with the delay until the
// next poll, or a single diagnostic line.
type Display interface {
	Show(s Snapshot, refresh time.Duration) error
	Diagnose(msg string) error
}

type StatusSink interface {
	Write(ctx context.Context, s Snapshot) error
}
