// Package crawl provides a reference host for the behavior engine.
// It opens pages, runs the matching behavior against each, snapshots the
// rendered result and records every run.
package crawl

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/unfold"
	"github.com/fwojciec/unfold/behavior"
	"github.com/fwojciec/unfold/bloom"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages processed at once when
// Runner.Concurrency is not set.
const DefaultConcurrency = 4

// ProgressFunc receives every event of every page as it is produced.
// Calls are serialized; events of one page arrive in order.
type ProgressFunc func(url string, ev unfold.ProgressEvent)

// Runner runs behaviors against a batch of pages.
type Runner struct {
	Opener    unfold.PageOpener
	Engine    *behavior.Engine
	Behaviors []unfold.Behavior

	// Optional collaborators.
	Runs        unfold.RunService
	Snapshots   unfold.SnapshotStore
	RateLimiter unfold.DomainLimiter

	// Clock times runs and retry backoff. Defaults to behavior.SystemClock.
	Clock  unfold.Clock
	Logger *slog.Logger

	Concurrency int
	RetryDelays []time.Duration
}

// Run processes every distinct URL and returns one run per URL, in input
// order. Fragments are ignored when deciding whether two URLs are the same.
//
// A page that fails is recorded with its error and never stops other pages.
// The returned error reports failures to record runs or commit snapshots.
// When ctx is canceled, pending snapshots are discarded.
func (r *Runner) Run(ctx context.Context, urls []string, progress ProgressFunc) ([]*unfold.Run, error) {
	clock := r.Clock
	if clock == nil {
		clock = behavior.SystemClock{}
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pages := dedupURLs(urls)

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var mu sync.Mutex
	report := func(url string, ev unfold.ProgressEvent) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		progress(url, ev)
	}

	runs := make([]*unfold.Run, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, u := range pages {
		g.Go(func() error {
			run := r.processPage(gctx, u, clock, logger, report)
			run.FinishedAt = clock.Now()
			runs[i] = run
			return nil
		})
	}
	_ = g.Wait()

	// Runs interrupted by cancellation are still worth recording.
	recordCtx := context.WithoutCancel(ctx)

	var errs []error
	for _, run := range runs {
		if run.Error != "" {
			logger.Warn("page failed", "url", run.URL, "error", run.Error)
		} else {
			logger.Info("page done", "url", run.URL, "behavior", run.Behavior, "clicks", run.Clicks, "snapshot", run.SnapshotHash)
		}
		if r.Runs == nil {
			continue
		}
		if err := r.Runs.CreateRun(recordCtx, run); err != nil {
			errs = append(errs, err)
		}
	}

	if r.Snapshots != nil {
		if ctx.Err() != nil {
			if err := r.Snapshots.Abort(); err != nil {
				errs = append(errs, err)
			}
		} else if err := r.Snapshots.Commit(); err != nil {
			errs = append(errs, err)
		}
	}

	return runs, errors.Join(errs...)
}

// processPage runs the matching behavior against one page.
// Every failure ends up in the returned run's Error.
func (r *Runner) processPage(ctx context.Context, rawURL string, clock unfold.Clock, logger *slog.Logger, report ProgressFunc) *unfold.Run {
	run := &unfold.Run{URL: rawURL, StartedAt: clock.Now()}

	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		run.Error = "invalid URL"
		return run
	}

	b, ok := behavior.Select(r.Behaviors, rawURL)
	if !ok {
		run.Error = "no behavior applies"
		return run
	}
	run.Behavior = b.Name

	if r.RateLimiter != nil {
		if err := r.RateLimiter.Wait(ctx, u.Hostname()); err != nil {
			run.Error = err.Error()
			return run
		}
	}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	page, err := OpenWithRetry(ctx, r.Opener, rawURL, clock, logger, delays)
	if err != nil {
		run.Error = "open: " + describe(err)
		return run
	}
	defer func() {
		if err := page.Close(); err != nil {
			logger.Warn("close page", "url", rawURL, "error", err)
		}
	}()

	for ev := range r.Engine.Run(ctx, page, b.Steps) {
		run.Events = append(run.Events, ev)
		if behavior.IsClick(ev) {
			run.Clicks++
		}
		report(rawURL, ev)
	}

	if err := ctx.Err(); err != nil {
		run.Error = err.Error()
		return run
	}

	html, err := page.HTML(ctx)
	if err != nil {
		run.Error = "capture: " + describe(err)
		return run
	}
	run.SnapshotHash = ComputeHash(html)

	if r.Snapshots != nil {
		if err := r.Snapshots.Save(ctx, rawURL, html); err != nil {
			run.Error = "snapshot: " + describe(err)
		}
	}

	return run
}

// dedupURLs drops fragments and repeated URLs, keeping first occurrences.
// Blank entries are skipped. The Bloom filter only pre-checks; a URL is
// dropped only once the exact set confirms it was seen.
func dedupURLs(urls []string) []string {
	seen := bloom.NewFilter(uint(len(urls)), 0.001)
	exact := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		if raw == "" {
			continue
		}
		u := canonicalURL(raw)
		if seen.Seen(u) {
			if _, dup := exact[u]; dup {
				continue
			}
		}
		exact[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func canonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// describe returns the message of an application error, or the error text
// of any other error.
func describe(err error) string {
	var e *unfold.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
