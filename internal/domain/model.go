package domain

import (
	"net/url"
	"time"
)

// Status is the textual state reported by the CI server. The set is open:
// values outside the constants below are carried through unchanged.
type Status string

const (
	StatusCreated Status = "created"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusManual  Status = "manual"
)

func (s Status) String() string { return string(s) }

// RepositoryIdentity addresses CI resources for the current checkout.
type RepositoryIdentity struct {
	RemoteName  string
	GitHost     string
	ProjectPath string
	Branch      string
	CommitSHA   string
}

// EncodedProject returns the project path escaped for a single URL path segment.
func (id RepositoryIdentity) EncodedProject() string {
	return url.PathEscape(id.ProjectPath)
}

func (id RepositoryIdentity) ShortSHA() string {
	if len(id.CommitSHA) > 8 {
		return id.CommitSHA[:8]
	}
	return id.CommitSHA
}

type Pipeline struct {
	ID            int64
	Status        Status
	Branch        string
	CommitMessage string
	WebURL        string
}

type Job struct {
	Name   string
	Status Status
	Stage  string
	// Duration is nil while the job has not started.
	Duration *float64
	WebURL   string
}

// Snapshot is the result of one poll cycle. Pipeline and Jobs always come
// from the same pair of requests.
type Snapshot struct {
	Identity  RepositoryIdentity
	Pipeline  Pipeline
	Jobs      []Job
	Retrieved time.Time
}
