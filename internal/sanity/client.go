// Package sanity is a read-only client for the Sanity content API.
package sanity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when a query for a single document matches nothing.
var ErrNotFound = errors.New("sanity: document not found")

// Config identifies a project dataset.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string // date string, e.g. "2024-01-01"
	UseCDN     bool
	Token      string
	Timeout    time.Duration
	// BaseURL overrides the host derived from ProjectID and UseCDN.
	BaseURL string
}

// Client runs GROQ queries over HTTP.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	stats      *Stats
	log        *slog.Logger
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-01-01"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	base := cfg.BaseURL
	if base == "" {
		host := "api"
		if cfg.UseCDN {
			host = "apicdn"
		}
		base = fmt.Sprintf("https://%s.%s.sanity.io", cfg.ProjectID, host)
	}
	return &Client{
		cfg:     cfg,
		baseURL: base,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		stats: NewStats(time.Hour),
		log:   log,
	}
}

// Stats returns per-query latency statistics.
func (c *Client) Stats() *Stats {
	return c.stats
}

// Images returns an image URL builder for the client's dataset.
func (c *Client) Images() *ImageBuilder {
	return NewImageBuilder(c.cfg.ProjectID, c.cfg.Dataset)
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Ms     int             `json:"ms"`
}

// Query runs groq with params and decodes the result into out. name labels
// the query in latency stats and logs. Parameters are JSON-encoded as
// $name query arguments.
func (c *Client) Query(ctx context.Context, name, groq string, params map[string]any, out any) error {
	values := url.Values{}
	values.Set("query", groq)
	for k, v := range params {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode param %s: %w", k, err)
		}
		values.Set("$"+k, string(b))
	}
	u := fmt.Sprintf("%s/v%s/data/query/%s?%s", c.baseURL, c.cfg.APIVersion, url.PathEscape(c.cfg.Dataset), values.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	elapsed := time.Since(start)
	c.stats.Record(name, elapsed)

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("query %s: status %d: %s", name, resp.StatusCode, truncate(string(body), 1024))
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if c.log != nil {
		c.log.Debug("sanity query", "query", name, "duration_ms", elapsed.Milliseconds(), "server_ms", qr.Ms)
	}
	if len(qr.Result) == 0 {
		qr.Result = json.RawMessage("null")
	}
	if err := json.Unmarshal(qr.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", name, err)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// RetryableError indicates a transient upstream failure (429 or 5xx).
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
