// Package http opens pages and discovers page URLs over plain HTTP.
// It needs no browser, so it suits sites that render their content on the
// server, and previewing a behavior against a live URL.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/unfold"
	"github.com/fwojciec/unfold/goquery"
)

// DefaultTimeout bounds each HTTP request.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent identifies requests made by the opener and sitemap service.
const DefaultUserAgent = "unfold (+https://github.com/fwojciec/unfold)"

// maxBodySize caps the size of a fetched document.
const maxBodySize = 32 << 20

// Ensure Opener implements unfold.PageOpener at compile time.
var _ unfold.PageOpener = (*Opener)(nil)

// Opener fetches documents over HTTP and serves them as static pages.
// No scripts run, so controls never react to clicks.
type Opener struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures an Opener.
type Option func(*Opener)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opener) {
		o.timeout = d
	}
}

// WithClient sets the HTTP client. Its timeout is replaced by the opener's.
func WithClient(c *http.Client) Option {
	return func(o *Opener) {
		o.client = c
	}
}

// WithUserAgent sets the User-Agent header. Defaults to DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(o *Opener) {
		o.userAgent = ua
	}
}

// NewOpener creates a new HTTP-based Opener.
func NewOpener(opts ...Option) *Opener {
	o := &Opener{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(o)
	}

	client := http.Client{}
	if o.client != nil {
		client = *o.client
	}
	client.Timeout = o.timeout
	o.client = &client

	return o
}

// Open fetches url. The page reports the final URL after redirects.
// Client errors other than 408 and 429 are returned as EINVALID, since
// repeating the request would not help.
func (o *Opener) Open(ctx context.Context, url string) (unfold.PageSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, unfold.Errorf(unfold.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", o.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if permanent(resp.StatusCode) {
			return nil, unfold.Errorf(unfold.EINVALID, "HTTP %d for %s", resp.StatusCode, url)
		}
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	return goquery.NewPage(string(body), resp.Request.URL.String())
}

func permanent(status int) bool {
	return status >= 400 && status < 500 &&
		status != http.StatusRequestTimeout && status != http.StatusTooManyRequests
}
