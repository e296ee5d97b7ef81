package slog

import (
	"iter"
	"log/slog"

	"github.com/fwojciec/unfold"
)

// LogProgress returns seq with every event logged as it passes through.
// The returned sequence stops the underlying run when the caller stops.
func LogProgress(logger *slog.Logger, url string, seq iter.Seq[unfold.ProgressEvent]) iter.Seq[unfold.ProgressEvent] {
	return func(yield func(unfold.ProgressEvent) bool) {
		for ev := range seq {
			if ev.Done {
				logger.Info("behavior complete", "url", url)
			} else {
				logger.Info("progress",
					"url", url,
					"step", ev.Step,
					"message", ev.Message,
				)
			}
			if !yield(ev) {
				return
			}
		}
	}
}
