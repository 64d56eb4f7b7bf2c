package workoutnotifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the status server client.
type Config struct {
	// BaseURL is the root URL of a running `workout-notifier schedule`
	// daemon started with --addr, e.g. "http://localhost:8080".
	BaseURL string

	// HTTPClient is an optional custom HTTP client.
	// If nil, a default client with 10s timeout is used.
	HTTPClient *http.Client
}

func (c *Config) defaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/api/v1")
}

// Client talks to the status server of a scheduling daemon.
type Client struct {
	cfg Config
}

// NewClient creates a new client with the given configuration.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{cfg: cfg}
}

// Health returns the daemon's health report. A degraded daemon answers
// with 503 but still returns a report, so no error is returned for it.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/health")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusServiceUnavailable {
		return nil, parseAPIError(status, body)
	}

	var h Health
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("workoutnotifier: failed to parse health: %w", err)
	}
	return &h, nil
}

// Dispatch asks the daemon to start a manual run and returns its run ID. It
// returns as soon as the run has been started; use LastRun to see how it ended.
func (c *Client) Dispatch(ctx context.Context) (string, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/api/v1/runs")
	if err != nil {
		return "", err
	}
	if status != http.StatusAccepted {
		return "", parseAPIError(status, body)
	}

	var d Dispatched
	if err := json.Unmarshal(body, &d); err != nil {
		return "", fmt.Errorf("workoutnotifier: failed to parse dispatch response: %w", err)
	}
	return d.RunID, nil
}

// LastRun returns the most recently finished run, or ErrNoRuns.
func (c *Client) LastRun(ctx context.Context) (*Run, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/v1/runs/last")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrNoRuns
	}
	if status != http.StatusOK {
		return nil, parseAPIError(status, body)
	}

	var run Run
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, fmt.Errorf("workoutnotifier: failed to parse run: %w", err)
	}
	return &run, nil
}

// NextRuns returns the next count fire times of the daemon's schedule.
func (c *Client) NextRuns(ctx context.Context, count int) (*Upcoming, error) {
	q := url.Values{}
	q.Set("count", strconv.Itoa(count))

	status, body, err := c.do(ctx, http.MethodGet, "/api/v1/runs/next?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, parseAPIError(status, body)
	}

	var up Upcoming
	if err := json.Unmarshal(body, &up); err != nil {
		return nil, fmt.Errorf("workoutnotifier: failed to parse next runs: %w", err)
	}
	return &up, nil
}

// do sends a request without a body and returns the status and raw body.
func (c *Client) do(ctx context.Context, method, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("workoutnotifier: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("workoutnotifier: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("workoutnotifier: failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}
