// Package origin implements the HTTP client the cache uses to fetch the
// backing web server. It is an external collaborator per spec §2/§6 (only
// its interface, webcache.Origin, is part of the cache-coordination core);
// this package provides the production implementation.
package origin

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mchtech/webcache"
)

// Client fetches req.URL against a fixed base address (http://127.0.0.1 by
// default, per spec §6), honoring the (connect, read) timeout pair and
// bounding how many fetches are in flight at once — the same outbound
// throttle the nearest pack example (an HTTP cache fronting an upstream API)
// applies with a semaphore in front of its transport.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	sem *semaphore.Weighted
}

// Config controls how a Client is constructed.
type Config struct {
	// BaseURL is prepended to the request's URL path, e.g. "http://127.0.0.1".
	BaseURL string
	// ConnectTimeout and ReadTimeout together form spec §6's REQUEST_TIMEOUT.
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	// MaxConcurrent bounds how many origin fetches this client allows in
	// flight at once. Zero means unbounded.
	MaxConcurrent int64
}

// DefaultConfig returns the documented REQUEST_TIMEOUT default of (0.5, 15)s
// against http://127.0.0.1, with no concurrency bound.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://127.0.0.1",
		ConnectTimeout: 500 * time.Millisecond,
		ReadTimeout:    15 * time.Second,
	}
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}

	transport := &http.Transport{
		DialContext: dialer.DialContext,
	}

	c := &Client{
		BaseURL: cfg.BaseURL,
		HTTP: &http.Client{
			Transport: transport,
			Timeout:   cfg.ConnectTimeout + cfg.ReadTimeout,
		},
	}
	if cfg.MaxConcurrent > 0 {
		c.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	return c
}

// Fetch issues a GET for req.URL against the configured base address,
// forwarding req.Headers verbatim (spec §6). It implements webcache.Origin.
func (c *Client) Fetch(ctx context.Context, req webcache.Request) (*webcache.OriginResponse, error) {
	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer c.sem.Release(1)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+req.URL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header = req.Headers.Clone()

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		headers[name] = resp.Header.Get(name)
	}

	return &webcache.OriginResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    headers,
		Body:       body,
	}, nil
}
