package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fwojciec/unfold"
	unfoldslog "github.com/fwojciec/unfold/slog"
	"github.com/stretchr/testify/assert"
)

func events(evs ...unfold.ProgressEvent) func(func(unfold.ProgressEvent) bool) {
	return func(yield func(unfold.ProgressEvent) bool) {
		for _, ev := range evs {
			if !yield(ev) {
				return
			}
		}
	}
}

func TestLogProgress(t *testing.T) {
	t.Parallel()

	t.Run("passes events through and logs them", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		in := events(
			unfold.ProgressEvent{Step: "load-more", Message: "gone after 3 clicks"},
			unfold.ProgressEvent{Message: unfold.CompletionMessage, Done: true},
		)

		var got []unfold.ProgressEvent
		for ev := range unfoldslog.LogProgress(logger, "https://stats.example.gov/", in) {
			got = append(got, ev)
		}

		assert.Len(t, got, 2)
		output := buf.String()
		assert.Contains(t, output, `step=load-more message="gone after 3 clicks"`)
		assert.Contains(t, output, `msg="behavior complete" url=https://stats.example.gov/`)
	})

	t.Run("stops the source when the consumer stops", func(t *testing.T) {
		t.Parallel()

		pulled := 0
		in := func(yield func(unfold.ProgressEvent) bool) {
			for range 3 {
				pulled++
				if !yield(unfold.ProgressEvent{Step: "filters", Message: "clicked"}) {
					return
				}
			}
		}

		for range unfoldslog.LogProgress(slog.New(slog.DiscardHandler), "https://stats.example.gov/", in) {
			break
		}

		assert.Equal(t, 1, pulled)
	})
}
