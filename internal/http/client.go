package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent identifies chmirad to the archive.
const DefaultUserAgent = "chmirad"

// Options configures the Client.
type Options struct {
	// Timeout bounds a whole request including reading the body.
	// Default: 60s
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// RequestsPerSecond limits how fast requests are issued across all
	// goroutines sharing the client. Zero or less disables the limit.
	RequestsPerSecond float64

	// Burst is the number of requests allowed above the steady rate.
	// Default: 1
	Burst int
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:   60 * time.Second,
		UserAgent: DefaultUserAgent,
		Burst:     1,
	}
}

// Client wraps HTTP operations against the archive.
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient creates a new HTTP client. Zero fields in opts fall back to
// DefaultOptions.
func NewClient(opts Options) *Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.Burst <= 0 {
		opts.Burst = def.Burst
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(limit, opts.Burst),
	}
}

// Fetch performs a GET request and returns the status code and full body.
//
// The error is non-nil only when no complete response was received: the
// request could not be built, the rate limiter wait was cancelled, the
// connection failed or timed out, or the body could not be read.
func (c *Client) Fetch(ctx context.Context, url string) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body is not needed.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return resp.StatusCode, nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}
