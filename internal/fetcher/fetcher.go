// Package fetcher downloads exchange payloads with browser-like headers and
// an optional session priming request.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
	"golang.org/x/time/rate"
)

const (
	DefaultPrimeTimeout = 10 * time.Second
	DefaultFetchTimeout = 30 * time.Second
	DefaultPoliteDelay  = 500 * time.Millisecond
)

var (
	// ErrNotFound is returned when the upstream answers 404
	ErrNotFound = errors.New("resource not found upstream")
	// ErrTransient matches every TransientError through errors.Is
	ErrTransient = errors.New("transient upstream failure")
)

// TransientError is a non-404 HTTP status or a network failure
type TransientError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *TransientError) Unwrap() error { return e.Err }

func (e *TransientError) Is(target error) bool { return target == ErrTransient }

// Request describes one download
type Request struct {
	URL string
	// PrimeURL, when set, is fetched first so the exchange hands out session cookies
	PrimeURL string
	Header   http.Header
}

// Client performs outbound requests
type Client struct {
	transport    http.RoundTripper
	primeTimeout time.Duration
	fetchTimeout time.Duration
	politeDelay  time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithTransport sets the round tripper used for every request
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithPrimeTimeout sets the timeout of the priming request
func WithPrimeTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.primeTimeout = d
	}
}

// WithFetchTimeout sets the timeout of the payload request
func WithFetchTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.fetchTimeout = d
	}
}

// WithPoliteDelay sets the minimum spacing between requests to one host.
// Zero disables spacing.
func WithPoliteDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.politeDelay = d
	}
}

// NewClient creates a new fetcher client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		transport:    http.DefaultTransport,
		primeTimeout: DefaultPrimeTimeout,
		fetchTimeout: DefaultFetchTimeout,
		politeDelay:  DefaultPoliteDelay,
		limiters:     make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get downloads req.URL and returns the body of a 2xx response
func (c *Client) Get(ctx context.Context, req Request) ([]byte, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	httpClient := &http.Client{Transport: c.transport, Jar: jar}

	if req.PrimeURL != "" {
		if err := c.prime(ctx, httpClient, req); err != nil {
			return nil, err
		}
	}

	if err := c.wait(ctx, req.URL); err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	httpReq, err := newRequest(fetchCtx, req.URL, req.Header)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		zaplogger.Warn("fetch failed", zaplogger.Fields{"url": req.URL, "error": err.Error()})
		return nil, &TransientError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		zaplogger.Debug("fetch not found", zaplogger.Fields{"url": req.URL})
		return nil, fmt.Errorf("%s: %w", req.URL, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zaplogger.Warn("fetch unexpected status", zaplogger.Fields{"url": req.URL, "status": resp.StatusCode})
		return nil, &TransientError{URL: req.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{URL: req.URL, Err: err}
	}
	return body, nil
}

// prime visits the landing page so the jar collects cookies; its status is ignored
func (c *Client) prime(ctx context.Context, httpClient *http.Client, req Request) error {
	if err := c.wait(ctx, req.PrimeURL); err != nil {
		return err
	}

	primeCtx, cancel := context.WithTimeout(ctx, c.primeTimeout)
	defer cancel()

	httpReq, err := newRequest(primeCtx, req.PrimeURL, req.Header)
	if err != nil {
		return err
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		zaplogger.Warn("session priming failed", zaplogger.Fields{"url": req.PrimeURL, "error": err.Error()})
		return &TransientError{URL: req.PrimeURL, Err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// wait blocks until the host of rawURL may be contacted again
func (c *Client) wait(ctx context.Context, rawURL string) error {
	if c.politeDelay <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	c.mu.Lock()
	limiter, ok := c.limiters[u.Host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(c.politeDelay), 1)
		c.limiters[u.Host] = limiter
	}
	c.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return &TransientError{URL: rawURL, Err: err}
	}
	return nil
}

func newRequest(ctx context.Context, rawURL string, header http.Header) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if host := header.Get("Host"); host != "" {
		httpReq.Host = host
	}
	return httpReq, nil
}
