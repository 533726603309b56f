// Package transport wraps net/http with the client settings the load engine
// configures once per run: timeout, transport-error retries, response body
// cap, and a fixed User-Agent.
package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// Defaults match the replay settings the journey scripts configure.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRetries   = 3
	DefaultMaxBodyBytes = 1024000
	DefaultUserAgent    = "LoadRunner-BizObs-Agent/1.0"
)

// Client is an HTTP client with load-test oriented defaults.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	maxRetries   int
	maxBodyBytes int64
}

// Option is a function that configures a Client.
type Option func(*Client)

// NewClient creates a new client with the given options.
func NewClient(options ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent:    DefaultUserAgent,
		maxRetries:   DefaultMaxRetries,
		maxBodyBytes: DefaultMaxBodyBytes,
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// WithBaseURL sets the base URL prepended to request paths.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMaxRetries sets how many times a request is retried after a transport
// error. Responses with error statuses are never retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		c.maxBodyBytes = n
	}
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient swaps the underlying http.Client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Response is the outcome of a completed exchange.
type Response struct {
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// PostJSON sends a POST with an application/json body and returns the
// response. Headers are applied exactly as given: keys are written into the
// request header map without canonicalization, because their casing is part
// of the wire contract with the target service.
//
// Transport errors are retried up to the configured count; an error is
// returned only when every attempt failed to produce a response.
func (c *Client) PostJSON(ctx context.Context, path string, headers map[string]string, body []byte) (*Response, error) {
	url := c.baseURL + path

	var lastErr error
	attempts := c.maxRetries + 1
	start := time.Now()

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		for key, value := range headers {
			// Direct map assignment preserves the exact key casing.
			req.Header[key] = []string{value}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		return &Response{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			Duration:   time.Since(start),
		}, nil
	}

	return nil, lastErr
}
