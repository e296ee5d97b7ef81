package behavior

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/unfold"
)

// DefaultPollInterval is how often the Locator re-evaluates its candidates.
const DefaultPollInterval = 100 * time.Millisecond

// Match is a clickable element found by a Locator.
type Match struct {
	Element unfold.Element
	State   unfold.ElementState

	// Selector is the candidate that produced the element.
	Selector string

	// Key is the element's target key.
	Key string
}

// Locator finds clickable elements among candidate selectors.
type Locator struct {
	Clock        unfold.Clock
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Locate polls the candidates in order until one yields a clickable element
// or timeout elapses. The bool result is false if nothing was found; a
// timeout is an expected outcome, not an error. Candidates are always
// evaluated at least once, and the final wait is clamped to the deadline.
func (l *Locator) Locate(ctx context.Context, page unfold.Page, selectors []string, timeout time.Duration) (Match, bool) {
	deadline := l.Clock.Now().Add(timeout)
	for {
		if m, ok := l.First(ctx, page, selectors); ok {
			return m, true
		}

		remaining := deadline.Sub(l.Clock.Now())
		if remaining <= 0 {
			return Match{}, false
		}
		if err := l.Clock.Sleep(ctx, min(l.PollInterval, remaining)); err != nil {
			return Match{}, false
		}
	}
}

// First returns the first clickable element of the first candidate that
// has one, without waiting.
func (l *Locator) First(ctx context.Context, page unfold.Page, selectors []string) (Match, bool) {
	for _, sel := range selectors {
		if matches := l.query(ctx, page, sel); len(matches) > 0 {
			return matches[0], true
		}
	}
	return Match{}, false
}

// Collect returns every clickable element matching any candidate, in
// candidate order and document order within a candidate. Elements sharing
// a target key are reported once.
func (l *Locator) Collect(ctx context.Context, page unfold.Page, selectors []string) []Match {
	var matches []Match
	seen := make(map[string]bool)
	for _, sel := range selectors {
		for _, m := range l.query(ctx, page, sel) {
			if seen[m.Key] {
				continue
			}
			seen[m.Key] = true
			matches = append(matches, m)
		}
	}
	return matches
}

// Refetch returns a fresh handle for the clickable element with the given
// target key. Earlier handles may have been invalidated by previous clicks.
func (l *Locator) Refetch(ctx context.Context, page unfold.Page, selectors []string, key string) (Match, bool) {
	for _, sel := range selectors {
		for _, m := range l.query(ctx, page, sel) {
			if m.Key == key {
				return m, true
			}
		}
	}
	return Match{}, false
}

// Occurrences returns the clickable elements matching one selector, keyed
// so that elements sharing a target key stay distinct: the first keeps the
// bare key, later ones get "#2", "#3" and so on. Positions count every
// matched element, clickable or not, so a control hidden by an earlier
// click does not shift the keys of the ones after it.
func (l *Locator) Occurrences(ctx context.Context, page unfold.Page, selector string) []Match {
	var matches []Match
	for _, m := range l.indexed(ctx, page, selector) {
		if unfold.IsClickable(m.State) {
			matches = append(matches, m)
		}
	}
	return matches
}

// RefetchOccurrence returns a fresh handle for the element with the given
// occurrence key, if it is still clickable.
func (l *Locator) RefetchOccurrence(ctx context.Context, page unfold.Page, selector, key string) (Match, bool) {
	for _, m := range l.indexed(ctx, page, selector) {
		if m.Key == key {
			return m, unfold.IsClickable(m.State)
		}
	}
	return Match{}, false
}

// query returns the clickable elements matching one selector.
// Query and state errors are logged and treated as "no match".
func (l *Locator) query(ctx context.Context, page unfold.Page, selector string) []Match {
	var matches []Match
	for _, m := range l.states(ctx, page, selector) {
		if unfold.IsClickable(m.State) {
			matches = append(matches, m)
		}
	}
	return matches
}

// indexed is states with occurrence keys.
func (l *Locator) indexed(ctx context.Context, page unfold.Page, selector string) []Match {
	matches := l.states(ctx, page, selector)
	counts := make(map[string]int, len(matches))
	for i := range matches {
		key := matches[i].Key
		counts[key]++
		if n := counts[key]; n > 1 {
			matches[i].Key = fmt.Sprintf("%s#%d", key, n)
		}
	}
	return matches
}

// states returns every element matching one selector with its state.
func (l *Locator) states(ctx context.Context, page unfold.Page, selector string) []Match {
	elements, err := page.Query(ctx, selector)
	if err != nil {
		l.logger().Debug("query failed", "selector", selector, "err", err)
		return nil
	}

	var base string
	var resolved bool
	matches := make([]Match, 0, len(elements))
	for _, el := range elements {
		state, err := el.State(ctx)
		if err != nil {
			l.logger().Debug("element state failed", "selector", selector, "err", err)
			continue
		}
		if !resolved && unfold.NormalizeHref(state.Href) != "" {
			base, resolved = l.pageURL(ctx, page), true
		}
		matches = append(matches, Match{
			Element:  el,
			State:    state,
			Selector: selector,
			Key:      unfold.TargetKeyAt(state, base),
		})
	}
	return matches
}

// pageURL returns the URL hrefs are resolved against, or "" if the page
// cannot report it.
func (l *Locator) pageURL(ctx context.Context, page unfold.Page) string {
	u, err := page.URL(ctx)
	if err != nil {
		l.logger().Debug("page URL failed", "err", err)
		return ""
	}
	return u
}

func (l *Locator) logger() *slog.Logger {
	if l.Logger == nil {
		return discardLogger
	}
	return l.Logger
}

var discardLogger = slog.New(slog.DiscardHandler)
