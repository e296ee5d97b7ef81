package crawl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/unfold"
)

// DefaultRetryDelays returns the backoff delays for open retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// OpenWithRetry opens url, retrying with the given backoff delays.
// It makes len(delays)+1 attempts at most. Invalid requests and context
// errors are returned immediately without retrying.
func OpenWithRetry(ctx context.Context, opener unfold.PageOpener, url string, clock unfold.Clock, logger *slog.Logger, delays []time.Duration) (unfold.PageSession, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		page, err := opener.Open(ctx, url)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if !retryable(ctx, err) || attempt >= maxAttempts-1 {
			break
		}

		logger.Warn("retry open", "url", url, "attempt", attempt+2, "error", err)

		if err := clock.Sleep(ctx, delays[attempt]); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return unfold.ErrorCode(err) != unfold.EINVALID
}
