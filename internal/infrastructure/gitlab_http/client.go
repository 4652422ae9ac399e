package gitlab_http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/davarch/ci-status/internal/domain"
)

const maxBodySize = 8 << 20

var errNotJSON = errors.New("response body is not JSON")

// Client talks to the GitLab REST API of whatever host the identity names.
// The token is fixed at construction and only ever sent as a header.
type Client struct {
	scheme string
	token  string
	hc     *http.Client
}

func New(scheme string, token string, timeout time.Duration) *Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}

	if scheme == "" {
		scheme = "https"
	}

	return &Client{
		scheme: scheme,
		token:  token,
		hc:     &http.Client{Transport: tr, Timeout: timeout},
	}
}

// Get fetches rawURL and returns the body if it is valid JSON. The status
// code is not interpreted: an error document is handed back like any other.
func (c *Client) Get(ctx context.Context, rawURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.ConnectionError{URL: rawURL, Err: err}
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &domain.ConnectionError{URL: rawURL, Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &domain.ConnectionError{URL: rawURL, Err: err}
	}

	if !json.Valid(body) {
		return nil, &domain.ConnectionError{
			URL: rawURL,
			Err: fmt.Errorf("%w (%s)", errNotJSON, resp.Status),
		}
	}

	return body, nil
}

func (c *Client) CommitURL(id domain.RepositoryIdentity) string {
	return fmt.Sprintf("%s://%s/api/v4/projects/%s/repository/commits/%s",
		c.scheme, id.GitHost, id.EncodedProject(), id.CommitSHA)
}

func (c *Client) JobsURL(id domain.RepositoryIdentity, pipelineID int64) string {
	return fmt.Sprintf("%s://%s/api/v4/projects/%s/pipelines/%d/jobs?per_page=100",
		c.scheme, id.GitHost, id.EncodedProject(), pipelineID)
}

func (c *Client) CommitPipeline(ctx context.Context, id domain.RepositoryIdentity) (domain.Pipeline, error) {
	raw, err := c.Get(ctx, c.CommitURL(id))
	if err != nil {
		return domain.Pipeline{}, err
	}
	return MapPipeline(raw, id.Branch)
}

func (c *Client) PipelineJobs(ctx context.Context, id domain.RepositoryIdentity, pipelineID int64) ([]domain.Job, error) {
	raw, err := c.Get(ctx, c.JobsURL(id, pipelineID))
	if err != nil {
		return nil, err
	}
	return MapJobs(raw)
}
