// Package fetch is the thin HTTP layer under the feed parsers. Both upstream
// sites are public and unauthenticated; all this package adds is a bounded
// timeout, a non-ambiguous answer for "does this day exist", and errors the
// chambers can treat as recoverable.
//
// The Senate floor site answers missing days with a 302 redirect to an HTML
// 404 page instead of a plain 404, so the client never follows redirects:
// only a direct 200 counts as real content.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds every fetch. Both feeds normally answer in well
// under a second; anything slower is treated like an outage.
const DefaultTimeout = 15 * time.Second

// StatusError reports a completed HTTP exchange that did not yield content.
// Redirects land here too, carrying their 3xx code.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// Client fetches feed documents. The zero value is not usable; call New.
type Client struct {
	http *http.Client
}

// New builds a client with the given timeout (DefaultTimeout when zero).
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Get retrieves url and returns the body of a direct 200 response. Any other
// status, including the redirect-to-404 dance, comes back as a *StatusError;
// network failures come back unchanged. All errors are recoverable from the
// engine's point of view.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}
