// Package gateway provides uniform access to the JIFMA REST API for the five record kinds
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jifma-project/jifmactl/internal/record"
)

const (
	// DefaultBaseURL is the API address used by the development server
	DefaultBaseURL = "http://localhost:5000"

	requestIDHeader = "X-Request-ID"
)

// Gateway fetches and mutates records of one kind at a time
type Gateway interface {
	List(ctx context.Context, kind record.Kind) ([]record.Record, error)
	Create(ctx context.Context, kind record.Kind, payload map[string]any) (record.Record, error)
	Update(ctx context.Context, kind record.Kind, id record.ID, payload map[string]any) (record.Record, error)
	Delete(ctx context.Context, kind record.Kind, id record.ID) error
}

// TokenSource supplies the bearer credential for mutating calls. An empty token means
// no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// Config holds the configuration for the API client
type Config struct {
	BaseURL string
	// Timeout bounds each request; zero leaves requests unbounded
	Timeout time.Duration
	// RateLimit caps outgoing requests per second; zero disables pacing
	RateLimit  float64
	HTTPClient *http.Client
}

// Client is the HTTP implementation of Gateway
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient creates an API client. tokens may be nil for read-only use.
func NewClient(cfg Config, tokens TokenSource, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		logger:     logger,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c
}

// BaseURL returns the API base address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches the public collection of the given kind
func (c *Client) List(ctx context.Context, kind record.Kind) ([]record.Record, error) {
	body, err := c.do(ctx, http.MethodGet, c.publicPath(kind), nil, false)
	if err != nil {
		return nil, err
	}
	records, err := record.DecodeList(kind, body)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind.Collection(), err)
	}
	return records, nil
}

// Create posts a new record. The returned record is nil when the API acknowledged the
// write without echoing the record back.
func (c *Client) Create(ctx context.Context, kind record.Kind, payload map[string]any) (record.Record, error) {
	body, err := c.do(ctx, http.MethodPost, c.adminPath(kind, ""), payload, true)
	if err != nil {
		return nil, err
	}
	return c.decodeWritten(kind, body), nil
}

// Update replaces the fields of an existing record
func (c *Client) Update(ctx context.Context, kind record.Kind, id record.ID, payload map[string]any) (record.Record, error) {
	body, err := c.do(ctx, http.MethodPut, c.adminPath(kind, id), payload, true)
	if err != nil {
		return nil, err
	}
	return c.decodeWritten(kind, body), nil
}

// Delete removes a record
func (c *Client) Delete(ctx context.Context, kind record.Kind, id record.ID) error {
	_, err := c.do(ctx, http.MethodDelete, c.adminPath(kind, id), nil, true)
	return err
}

func (c *Client) publicPath(kind record.Kind) string {
	return "/api/" + kind.Collection()
}

func (c *Client) adminPath(kind record.Kind, id record.ID) string {
	p := "/api/admin/" + kind.Collection()
	if !id.IsZero() {
		p += "/" + url.PathEscape(id.String())
	}
	return p
}

func (c *Client) decodeWritten(kind record.Kind, body []byte) record.Record {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	rec, err := record.DecodeOne(kind, body)
	if err != nil || rec.RecordID().IsZero() {
		c.logger.Debug("write acknowledged without record", "kind", kind.String())
		return nil
	}
	return rec
}

// do performs a single request. There are no retries; any failure is returned as a
// *NetworkError or *RemoteError.
func (c *Client) do(ctx context.Context, method, path string, payload any, authenticated bool) ([]byte, error) {
	target := c.baseURL + path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Op: method, URL: target, Err: err}
		}
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", target, "request_id", requestID, "error", err)
		return nil, &NetworkError{Op: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: method, URL: target, Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.logger.Debug("request completed",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
