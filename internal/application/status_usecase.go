package application

import (
	"context"
	"fmt"
	"time"

	"github.com/davarch/ci-status/internal/domain"
)

// StatusUseCase produces one snapshot: identity, then the commit lookup,
// then the jobs of the pipeline it names.
type StatusUseCase struct {
	identity *IdentityResolver
	ci       domain.CIClient
	now      func() time.Time
}

func NewStatusUseCase(identity *IdentityResolver, ci domain.CIClient) *StatusUseCase {
	return &StatusUseCase{identity: identity, ci: ci, now: time.Now}
}

func (uc *StatusUseCase) Fetch(ctx context.Context, remote string) (domain.Snapshot, error) {
	id, err := uc.identity.Resolve(remote)
	if err != nil {
		return domain.Snapshot{}, err
	}

	p, err := uc.ci.CommitPipeline(ctx, id)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("commit %s: %w", id.ShortSHA(), err)
	}

	jobs, err := uc.ci.PipelineJobs(ctx, id, p.ID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("pipeline %d jobs: %w", p.ID, err)
	}

	return domain.Snapshot{
		Identity:  id,
		Pipeline:  p,
		Jobs:      jobs,
		Retrieved: uc.now(),
	}, nil
}
