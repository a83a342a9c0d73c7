package crawler

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

// Fetcher retrieves page bodies for the worker pool. Implementations must
// honor the context, return an empty body (not an error) for content that
// is not worth extracting from, and keep per-request concerns (headers,
// TLS, timeouts) to themselves.
type Fetcher interface {
	// Fetch retrieves the body of the page at pageURL. A non-HTML/non-text
	// response yields ("", nil) so callers never run extraction on binary
	// payloads.
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// StealthFetcher is the production Fetcher. Every request picks a random
// User-Agent from the pool and sends browser-like Accept headers so the
// crawler's traffic blends in with ordinary browsing.
type StealthFetcher struct {
	// client is the shared HTTP client. One client (and so one connection
	// pool) serves all workers; per-worker state is just the request.
	client *http.Client

	// userAgents is the pool of User-Agent headers to rotate through.
	userAgents []string

	// maxBodySize limits how many body bytes are read per response.
	maxBodySize int64
}

// FetcherOption configures a StealthFetcher.
type FetcherOption func(*StealthFetcher)

// WithUserAgents replaces the User-Agent pool. An empty slice is ignored.
func WithUserAgents(agents []string) FetcherOption {
	return func(f *StealthFetcher) {
		if len(agents) > 0 {
			f.userAgents = agents
		}
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *StealthFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithInsecureTLS disables TLS certificate verification.
func WithInsecureTLS(insecure bool) FetcherOption {
	return func(f *StealthFetcher) {
		if !insecure {
			return
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // Explicit --insecure opt-in
		f.client.Transport = transport
	}
}

// NewStealthFetcher creates a StealthFetcher with the given per-request
// timeout.
func NewStealthFetcher(timeout time.Duration, opts ...FetcherOption) *StealthFetcher {
	f := &StealthFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgents: []string{
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		maxBodySize: 10 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Client returns the underlying HTTP client, for collaborators (like the
// image pipeline) that need to share its transport and timeout.
func (f *StealthFetcher) Client() *http.Client {
	return f.client
}

// Fetch retrieves a page. Non-HTML and non-plain-text responses return an
// empty body with a nil error: the URL is consumed, but there is nothing
// to extract.
func (f *StealthFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgents[rand.IntN(len(f.userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" &&
		!strings.Contains(contentType, "text/html") &&
		!strings.Contains(contentType, "text/plain") {
		return "", nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	return string(body), nil
}
