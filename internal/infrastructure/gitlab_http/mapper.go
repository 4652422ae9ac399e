package gitlab_http

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/davarch/ci-status/internal/domain"
)

type commitDTO struct {
	Message      *string         `json:"message"`
	LastPipeline json.RawMessage `json:"last_pipeline"`
}

type lastPipelineDTO struct {
	ID     *int64  `json:"id"`
	Status *string `json:"status"`
	WebURL *string `json:"web_url"`
}

// errorDTO is the body GitLab sends with 4xx/5xx answers, either
// {"message": ...} or the OAuth style {"error": ...}.
type errorDTO struct {
	Message json.RawMessage `json:"message"`
	Error   *string         `json:"error"`
}

type jobDTO struct {
	Name     *string  `json:"name"`
	Status   *string  `json:"status"`
	Stage    *string  `json:"stage"`
	Duration *float64 `json:"duration"`
	WebURL   *string  `json:"web_url"`
}

// MapPipeline reads last_pipeline and the commit message from a commit
// lookup response. A null last_pipeline is the usual state for a few
// seconds after a push; an absent one means the body was an error document.
func MapPipeline(raw json.RawMessage, branch string) (domain.Pipeline, error) {
	var dto commitDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return domain.Pipeline{}, &domain.ShapeMismatchError{Field: "commit", Message: serverMessage(raw), Err: err}
	}

	switch {
	case len(dto.LastPipeline) == 0:
		return domain.Pipeline{}, &domain.ShapeMismatchError{Field: "last_pipeline", Message: serverMessage(raw)}
	case isNull(dto.LastPipeline):
		return domain.Pipeline{}, &domain.ShapeMismatchError{Field: "last_pipeline", Pending: true}
	}

	var lp lastPipelineDTO
	if err := json.Unmarshal(dto.LastPipeline, &lp); err != nil {
		return domain.Pipeline{}, &domain.ShapeMismatchError{Field: "last_pipeline", Err: err}
	}

	switch {
	case lp.ID == nil:
		return domain.Pipeline{}, &domain.ShapeMismatchError{Field: "last_pipeline.id"}
	case lp.Status == nil:
		return domain.Pipeline{}, &domain.ShapeMismatchError{Field: "last_pipeline.status"}
	case lp.WebURL == nil:
		return domain.Pipeline{}, &domain.ShapeMismatchError{Field: "last_pipeline.web_url"}
	case dto.Message == nil:
		return domain.Pipeline{}, &domain.ShapeMismatchError{Field: "message"}
	}

	return domain.Pipeline{
		ID:            *lp.ID,
		Status:        domain.Status(*lp.Status),
		Branch:        branch,
		CommitMessage: *dto.Message,
		WebURL:        *lp.WebURL,
	}, nil
}

// MapJobs converts a jobs list response, keeping the order GitLab returned.
func MapJobs(raw json.RawMessage) ([]domain.Job, error) {
	if isNull(raw) {
		return nil, &domain.ShapeMismatchError{Field: "jobs"}
	}

	var list []*jobDTO
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, &domain.ShapeMismatchError{Field: "jobs", Message: serverMessage(raw), Err: err}
	}

	jobs := make([]domain.Job, 0, len(list))
	for i, j := range list {
		field := func(name string) error {
			return &domain.ShapeMismatchError{Field: fmt.Sprintf("jobs[%d].%s", i, name)}
		}

		switch {
		case j == nil:
			return nil, &domain.ShapeMismatchError{Field: fmt.Sprintf("jobs[%d]", i)}
		case j.Name == nil:
			return nil, field("name")
		case j.Status == nil:
			return nil, field("status")
		case j.Stage == nil:
			return nil, field("stage")
		case j.WebURL == nil:
			return nil, field("web_url")
		}

		jobs = append(jobs, domain.Job{
			Name:     *j.Name,
			Status:   domain.Status(*j.Status),
			Stage:    *j.Stage,
			Duration: j.Duration,
			WebURL:   *j.WebURL,
		})
	}

	return jobs, nil
}

// serverMessage extracts the text of an error document, or "" if raw is not one.
func serverMessage(raw json.RawMessage) string {
	var dto errorDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return ""
	}

	if len(dto.Message) > 0 && !isNull(dto.Message) {
		var text string
		if json.Unmarshal(dto.Message, &text) == nil {
			return text
		}
		var buf bytes.Buffer
		if json.Compact(&buf, dto.Message) == nil {
			return buf.String()
		}
	}

	if dto.Error != nil {
		return *dto.Error
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
