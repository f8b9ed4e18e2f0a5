package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/alexzimmer/portfolio/internal/version"
)

// maxBody caps how much of the health response is read.
const maxBody = 64 << 10

// Result is what the health endpoint answered.
type Result struct {
	StatusCode int
	Status     string
	Message    string
	Body       []byte
}

// Healthy is true only for a 200 carrying status "healthy".
func (r *Result) Healthy() bool {
	return r.StatusCode == http.StatusOK && r.Status == "healthy"
}

// Client abstracts a single probe of the health endpoint.
type Client interface {
	Check(ctx context.Context) (*Result, error)
}

// HTTPClient probes the health endpoint over HTTP. The URL is injected so
// tests can point it at httptest servers.
type HTTPClient struct {
	url        string
	userAgent  string
	httpClient *http.Client
}

func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url: url,
		// Contains "Docker" so the server labels the caller docker-healthcheck.
		userAgent: "Docker-HealthCheck/" + version.Version,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Check performs one GET. Non-2xx answers are not errors: a degraded
// service still returns a JSON body worth reporting.
func (c *HTTPClient) Check(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("unexpected non-JSON response (status %d)", resp.StatusCode)
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Status:     gjson.GetBytes(body, "status").String(),
		Message:    gjson.GetBytes(body, "message").String(),
		Body:       body,
	}, nil
}

// compile-time check that HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
