package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/athletconnect/internal/catalog"
	"github.com/claude/athletconnect/internal/models"
	"github.com/claude/athletconnect/internal/scoring"
)

// HTTPClient implements DataSource and HealthChecker by calling the
// AthletConnect REST API. Used for remote MCP mode where the binary runs
// locally (stdio) but data lives on the server.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return catalog.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) Tests(ctx context.Context) ([]models.FitnessTest, error) {
	var tests []models.FitnessTest
	if err := c.get(ctx, "/api/v1/tests", nil, &tests); err != nil {
		return nil, err
	}
	return tests, nil
}

func (c *HTTPClient) Test(ctx context.Context, id string) (*models.FitnessTest, error) {
	var t models.FitnessTest
	if err := c.get(ctx, "/api/v1/tests/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) Leaderboard(ctx context.Context, sport, region string) ([]models.Athlete, error) {
	params := url.Values{}
	if sport != "" {
		params.Set("sport", sport)
	}
	if region != "" {
		params.Set("region", region)
	}
	var athletes []models.Athlete
	if err := c.get(ctx, "/api/v1/leaderboard", params, &athletes); err != nil {
		return nil, err
	}
	return athletes, nil
}

func (c *HTTPClient) Athlete(ctx context.Context, id string) (*models.Athlete, error) {
	var a models.Athlete
	if err := c.get(ctx, "/api/v1/athletes/"+url.PathEscape(id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *HTTPClient) Opportunities(ctx context.Context) ([]models.Opportunity, error) {
	var opps []models.Opportunity
	if err := c.get(ctx, "/api/v1/opportunities", nil, &opps); err != nil {
		return nil, err
	}
	return opps, nil
}

// Health asks the server's scoring proxy for the backend's health.
func (c *HTTPClient) Health(ctx context.Context) (*scoring.HealthStatus, error) {
	var h scoring.HealthStatus
	if err := c.get(ctx, "/api/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
