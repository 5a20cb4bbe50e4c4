package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBackendURL is used when no backend URL is configured.
const DefaultBackendURL = "http://127.0.0.1:5000"

// Client talks to the external AI scoring backend over HTTP.
// It never retries; callers decide how to degrade.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting baseURL. A zero timeout defaults to 10s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBackendURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend URL the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BeginSession asks the backend to open a capture session.
func (c *Client) BeginSession(ctx context.Context, exerciseType string) (BeginResponse, error) {
	var resp BeginResponse
	err := c.postJSON(ctx, "/start_session", beginRequest{ExerciseType: exerciseType}, &resp)
	return resp, err
}

// Scorecard asks the backend for the score of a finished session.
// sessionID may be nil; it is sent as JSON null.
func (c *Client) Scorecard(ctx context.Context, exerciseType string, sessionID *string) (ScorecardResponse, error) {
	var resp ScorecardResponse
	err := c.postJSON(ctx, "/scorecard", scorecardRequest{ExerciseType: exerciseType, SessionID: sessionID}, &resp)
	return resp, err
}

// EndSession tells the backend a session is finished.
func (c *Client) EndSession(ctx context.Context, sessionID string) error {
	var resp struct {
		Success Flag   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.postJSON(ctx, "/end_session", endRequest{SessionID: sessionID}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("scoring: /end_session: %s", resp.Error)
	}
	return nil
}

// Health reports backend availability.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	status, body, err := c.Forward(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("scoring: /health returned %d: %s", status, body)
	}
	var h HealthStatus
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("scoring: decode health: %w", err)
	}
	return &h, nil
}

// Forward sends body to path unchanged and returns the backend status and
// body unchanged. Only transport failures are errors.
func (c *Client) Forward(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("scoring: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("scoring: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("scoring: read body: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("scoring: marshal %s: %w", path, err)
	}

	status, body, err := c.Forward(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("scoring: %s returned %d: %s", path, status, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("scoring: decode %s: %w", path, err)
	}
	return nil
}
