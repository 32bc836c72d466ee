package statsapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tinytelemetry/statshaus/internal/activity"
	"github.com/tinytelemetry/statshaus/internal/model"
)

const (
	// maxBodySize caps how much of a successful response is read (10 MB).
	maxBodySize = 10 * 1024 * 1024
	// maxErrorBodySize caps how much of an error response ends up in a diagnostic.
	maxErrorBodySize = 4 * 1024
)

// Client fetches activity snapshots over HTTP with basic auth.
// It implements model.SnapshotFetcher.
type Client struct {
	cfg    Config
	client *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. The configured
// timeout is not applied to a caller-supplied client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient validates cfg and returns a ready client. Missing credentials
// return an error wrapping ErrConfigMissing.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the URL being polled.
func (c *Client) Endpoint() string {
	return c.cfg.Endpoint
}

// Fetch performs one GET and decodes the body. Failures are either
// *TransportError or *MalformedPayloadError.
func (c *Client) Fetch(ctx context.Context) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint, nil)
	if err != nil {
		return Payload{}, &TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Payload{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return Payload{}, &TransportError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Payload{}, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("read body: %w", err),
		}
	}
	return decodePayload(body)
}

// FetchSnapshot fetches and normalizes one snapshot.
func (c *Client) FetchSnapshot(ctx context.Context) (model.Snapshot, error) {
	p, err := c.Fetch(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{
		Records:   activity.Normalize(p.Activity),
		FetchedAt: p.Now,
	}, nil
}

// statusText extracts the reason phrase from resp.Status ("503 Service
// Unavailable" -> "Service Unavailable").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	return text
}
