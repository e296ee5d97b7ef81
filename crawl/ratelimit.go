package crawl

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/fwojciec/unfold"
	"github.com/fwojciec/unfold/behavior"
	"golang.org/x/time/rate"
)

var _ unfold.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces out page opens per host with one token bucket per
// host and no bursting. Host names are matched case-insensitively and
// without port or trailing dot, so every spelling of a host shares its
// bucket.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	clock    unfold.Clock
}

// LimiterOption configures a DomainLimiter.
type LimiterOption func(*DomainLimiter)

// WithLimiterClock sets the clock waits are measured and slept on.
// Defaults to behavior.SystemClock.
func WithLimiterClock(clock unfold.Clock) LimiterOption {
	return func(d *DomainLimiter) {
		d.clock = clock
	}
}

// NewDomainLimiter returns a limiter that allows rps page opens per second
// to each host. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64, opts ...LimiterOption) *DomainLimiter {
	d := &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Inf,
		clock:    behavior.SystemClock{},
	}
	if rps > 0 {
		d.limit = rate.Limit(rps)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Wait blocks until the host's bucket admits another page open.
// A canceled wait gives its token back.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := d.clock.Now()
	r := d.limiter(hostKey(domain)).ReserveN(now, 1)
	if !r.OK() {
		return unfold.Errorf(unfold.EINTERNAL, "rate limiter cannot admit %s", domain)
	}
	if err := d.clock.Sleep(ctx, r.DelayFrom(now)); err != nil {
		r.CancelAt(d.clock.Now())
		return err
	}
	return nil
}

func (d *DomainLimiter) limiter(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.limiters[host]
	if !ok {
		l = rate.NewLimiter(d.limit, 1)
		d.limiters[host] = l
	}
	return l
}

// hostKey folds the spellings of a host name into one bucket key.
func hostKey(domain string) string {
	h := strings.ToLower(strings.TrimSpace(domain))
	if host, _, err := net.SplitHostPort(h); err == nil {
		h = host
	}
	return strings.TrimSuffix(h, ".")
}
