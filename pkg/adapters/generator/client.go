// Package generator is the HTTP adapter for the itinerary generation service.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/tripreel/internal/logging"
	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/aretw0/tripreel/pkg/ports"
	"github.com/aretw0/tripreel/pkg/schema"
)

const (
	generatePath       = "/api/generate"
	defaultHTTPTimeout = 120 * time.Second
	// Responses are small JSON documents; anything larger is not an itinerary.
	maxBodyBytes = 4 << 20
)

// Client calls GET /api/generate on the generation service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

var _ ports.Generator = (*Client)(nil)

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds a single round trip. Zero keeps the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout, Transport: c.httpClient.Transport}
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(ua)
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a client for the service rooted at baseURL.
// An empty baseURL targets the same origin ("/api/generate").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the request URL for videoURL, percent-encoding it as the
// "url" query parameter.
func (c *Client) Endpoint(videoURL string) string {
	q := url.Values{}
	q.Set("url", videoURL)
	return c.baseURL + generatePath + "?" + q.Encode()
}

// Generate performs exactly one round trip. It never retries.
func (c *Client) Generate(ctx context.Context, videoURL string) (*domain.Itinerary, error) {
	endpoint := c.Endpoint(videoURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("generate request failed", "url", videoURL, "err", err)
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.Debug("generate response",
		"url", videoURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &domain.DecodeError{Err: err}
	}
	// Valid JSON of the wrong shape still renders, as an empty itinerary.
	raw, _ := payload.(map[string]any)

	if embedded, ok := schema.EmbeddedError(raw); ok {
		return nil, embedded
	}

	it, warn := schema.Decode(raw)
	if warn != nil {
		c.logger.Warn("itinerary decoded with defaults", "url", videoURL, "err", warn)
	}
	return it, nil
}

// statusError reads the optional "detail" field of a failure body.
// Bodies that are not JSON objects fall back to the generic message.
func statusError(code int, body []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.NewStatusError(code, "")
	}
	return domain.NewStatusError(code, schema.Detail(raw))
}
