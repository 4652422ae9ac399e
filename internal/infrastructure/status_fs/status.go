package status_fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/davarch/ci-status/internal/domain"
)

// FSStatus writes the latest snapshot as JSON for status bars and scripts.
type FSStatus struct {
	path string
}

func New(path string) *FSStatus { return &FSStatus{path: path} }

type record struct {
	Project   string         `json:"project"`
	Remote    string         `json:"remote"`
	Branch    string         `json:"branch"`
	SHA       string         `json:"sha"`
	Pipeline  int64          `json:"pipeline_id"`
	Status    string         `json:"status"`
	URL       string         `json:"url"`
	Jobs      map[string]int `json:"jobs"`
	Retrieved int64          `json:"retrieved"`
}

func (c *FSStatus) Write(_ context.Context, s domain.Snapshot) error {
	if c.path == "" {
		return errors.New("status file path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}

	counts := make(map[string]int)
	for _, j := range s.Jobs {
		counts[string(j.Status)]++
	}

	tmp := c.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(record{
		Project:   s.Identity.ProjectPath,
		Remote:    s.Identity.RemoteName,
		Branch:    s.Identity.Branch,
		SHA:       s.Identity.CommitSHA,
		Pipeline:  s.Pipeline.ID,
		Status:    string(s.Pipeline.Status),
		URL:       s.Pipeline.WebURL,
		Jobs:      counts,
		Retrieved: s.Retrieved.Unix(),
	}); err != nil {
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, c.path)
}
