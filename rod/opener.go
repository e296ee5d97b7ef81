package rod

import (
	"context"
	"time"

	"github.com/fwojciec/unfold"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultNavigationTimeout bounds navigation and initial load of a page.
const DefaultNavigationTimeout = 30 * time.Second

// Ensure Opener implements unfold.PageOpener at compile time.
var _ unfold.PageOpener = (*Opener)(nil)

// Opener opens pages in a managed Chrome browser.
// Opener is safe for concurrent use by multiple goroutines.
type Opener struct {
	manager *BrowserManager
	timeout time.Duration
}

// OpenerOption configures an Opener.
type OpenerOption func(*Opener)

// WithNavigationTimeout sets how long Open waits for a page to load.
// Defaults to DefaultNavigationTimeout.
func WithNavigationTimeout(d time.Duration) OpenerOption {
	return func(o *Opener) {
		o.timeout = d
	}
}

// NewOpener creates an Opener that opens pages in browsers from manager.
func NewOpener(manager *BrowserManager, opts ...OpenerOption) *Opener {
	o := &Opener{
		manager: manager,
		timeout: DefaultNavigationTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open creates a new tab, navigates it to url and waits for the load event.
// The returned session must be closed.
func (o *Opener) Open(ctx context.Context, url string) (unfold.PageSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser := o.manager.Acquire()
	if browser == nil {
		return nil, unfold.Errorf(unfold.EINVALID, "browser manager is closed")
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		o.manager.Release()
		return nil, err
	}

	navCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	nav := page.Context(navCtx)
	if err := nav.Navigate(url); err != nil {
		_ = page.Close()
		o.manager.Release()
		return nil, err
	}
	if err := nav.WaitLoad(); err != nil {
		_ = page.Close()
		o.manager.Release()
		return nil, err
	}

	return &Page{page: page, release: o.manager.Release}, nil
}
