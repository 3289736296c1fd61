// Package transport posts save bundles to a Breeze-style data service over
// HTTP.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const defaultMaxResponseSize = 32 << 20

// StatusError is returned for non-2xx responses. Body holds the response
// so callers can read validation payloads.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return "unexpected response status " + e.Status
}

// ResponseBody returns the body the server answered with.
func (e *StatusError) ResponseBody() []byte {
	return e.Body
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Add(key, value)
	}
}

// WithMaxResponseSize limits how many bytes of a response are read.
func WithMaxResponseSize(n int64) Option {
	return func(c *Client) {
		c.maxResponse = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client posts JSON documents to resources below a service root.
type Client struct {
	base        *url.URL
	http        *http.Client
	header      http.Header
	maxResponse int64
	logger      *slog.Logger
}

// New creates a Client for the service rooted at serviceURL.
func New(serviceURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(serviceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service URL: %w", err)
	}

	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("service URL %q must be absolute", serviceURL)
	}

	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		base:        base,
		http:        http.DefaultClient,
		header:      http.Header{},
		maxResponse: defaultMaxResponseSize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ResourceURL resolves a resource name against the service root.
func (c *Client) ResourceURL(resourceName string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(resourceName, "/"))
	if err != nil {
		return "", fmt.Errorf("failed to parse resource name %q: %w", resourceName, err)
	}

	return c.base.ResolveReference(ref).String(), nil
}

// Post sends body as JSON to the named resource and returns the response
// body. Non-2xx answers return a *StatusError.
func (c *Client) Post(ctx context.Context, resourceName string, body []byte) ([]byte, error) {
	target, err := c.ResourceURL(resourceName)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range c.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("posting", "url", target, "bytes", len(body))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post to %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("request failed", "url", target, "status", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: data}
	}

	return data, nil
}
