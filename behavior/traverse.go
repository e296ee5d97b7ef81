package behavior

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/unfold"
)

// executionState is the mutable state of one step execution.
// It is created when the step begins and dropped when it completes.
type executionState struct {
	tracker          *Tracker
	iterations       int
	consecutiveStale int
	clicks           int
}

func newExecutionState() *executionState {
	return &executionState{tracker: NewTracker()}
}

// traversal drives the controls of a single step.
type traversal struct {
	step    unfold.Step
	page    unfold.Page
	locator *Locator
	clock   unfold.Clock
	logger  *slog.Logger
	report  *reporter
	state   *executionState
}

// oneShot waits for the first candidate to match, then clicks every
// clickable match of that candidate once. Matches sharing a target key are
// told apart by their position, so identical labels in separate groups are
// each clicked.
func (t *traversal) oneShot(ctx context.Context) error {
	first, ok := t.locator.Locate(ctx, t.page, t.step.Selectors, t.step.WaitTimeout)
	if !ok {
		if err := ctx.Err(); err != nil {
			return err
		}
		return t.emit("skipped: no clickable control within %s", t.step.WaitTimeout)
	}

	refetch := func(ctx context.Context, key string) (Match, bool) {
		return t.locator.RefetchOccurrence(ctx, t.page, first.Selector, key)
	}
	for _, m := range t.locator.Occurrences(ctx, t.page, first.Selector) {
		if t.state.clicks >= t.step.MaxIterations {
			break
		}
		if t.state.tracker.Seen(m.Key) {
			continue
		}
		if err := t.click(ctx, m.Key, refetch); err != nil {
			return err
		}
	}

	if t.state.clicks == 0 {
		return unfold.Errorf(unfold.EINTERNAL, "no %q control could be clicked", first.Selector)
	}
	return nil
}

// untilGone clicks the same control until it stops being clickable.
// Each iteration waits up to the step's wait timeout for the control, so a
// button that is briefly replaced while content loads is not mistaken for
// a finished one.
func (t *traversal) untilGone(ctx context.Context) error {
	for t.state.iterations < t.step.MaxIterations {
		m, ok := t.locator.Locate(ctx, t.page, t.step.Selectors, t.step.WaitTimeout)
		if !ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			if t.state.clicks == 0 {
				return t.emit("skipped: no clickable control within %s", t.step.WaitTimeout)
			}
			return t.emit("gone after %d clicks", t.state.clicks)
		}

		t.state.iterations++
		if err := m.Element.Click(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.logger.Warn("click failed", "target", m.Key, "selector", m.Selector, "err", err)
		} else {
			t.state.clicks++
			if err := t.emit("clicked %s (%s)", displayKey(m.Key), m.Selector); err != nil {
				return err
			}
			if err := t.clock.Sleep(ctx, t.step.ClickDelay); err != nil {
				return err
			}
		}
		if err := t.clock.Sleep(ctx, t.step.SettleDelay); err != nil {
			return err
		}
	}
	return t.emit("stopped at iteration cap (%d)", t.step.MaxIterations)
}

// eachUntilStable repeatedly clicks every clickable, not yet actioned
// control until none remain, the set of remaining controls stops changing,
// or the iteration cap is reached.
func (t *traversal) eachUntilStable(ctx context.Context, threshold int) error {
	if _, ok := t.locator.Locate(ctx, t.page, t.step.Selectors, t.step.WaitTimeout); !ok {
		if err := ctx.Err(); err != nil {
			return err
		}
		return t.emit("skipped: no clickable control within %s", t.step.WaitTimeout)
	}

	var prev uint64
	for t.state.iterations < t.step.MaxIterations {
		var pending []Match
		for _, m := range t.locator.Collect(ctx, t.page, t.step.Selectors) {
			if !t.state.tracker.Seen(m.Key) {
				pending = append(pending, m)
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(pending) == 0 {
			return t.emit("exhausted after %d passes", t.state.iterations)
		}

		sig := signature(pending)
		if t.state.iterations > 0 && sig == prev {
			t.state.consecutiveStale++
		} else {
			t.state.consecutiveStale = 0
		}
		prev = sig
		if t.state.consecutiveStale >= threshold {
			return t.emit("stable after %d passes", t.state.iterations)
		}

		refetch := func(ctx context.Context, key string) (Match, bool) {
			return t.locator.Refetch(ctx, t.page, t.step.Selectors, key)
		}
		for _, m := range pending {
			if err := t.click(ctx, m.Key, refetch); err != nil {
				return err
			}
		}

		if err := t.clock.Sleep(ctx, t.step.SettleDelay); err != nil {
			return err
		}
		t.state.iterations++
	}
	return t.emit("stopped at iteration cap (%d)", t.step.MaxIterations)
}

// click re-fetches the target by key, clicks it, marks it and reports it.
// A vanished target or a failed click is logged and skipped; only context
// cancellation and a stopped consumer are returned as errors.
func (t *traversal) click(ctx context.Context, key string, refetch func(context.Context, string) (Match, bool)) error {
	m, ok := refetch(ctx, key)
	if !ok {
		t.logger.Debug("target vanished before click", "target", key)
		return ctx.Err()
	}

	if err := m.Element.Click(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.logger.Warn("click failed", "target", key, "selector", m.Selector, "err", err)
		return nil
	}

	t.state.tracker.Mark(key)
	t.state.clicks++
	if err := t.emit("clicked %s (%s)", displayKey(key), m.Selector); err != nil {
		return err
	}
	return t.clock.Sleep(ctx, t.step.ClickDelay)
}

// emit reports an event for the step. It returns errStopped if the consumer
// no longer reads events.
func (t *traversal) emit(format string, args ...any) error {
	if !t.report.emit(t.step.Name, format, args...) {
		return errStopped
	}
	return nil
}

// signature fingerprints the set of pending target keys.
func signature(matches []Match) uint64 {
	keys := make([]string, len(matches))
	for i, m := range matches {
		keys[i] = m.Key
	}
	return xxhash.Sum64String(strings.Join(keys, "\x00"))
}

const maxDisplayKey = 80

// displayKey shortens long text keys for progress messages.
func displayKey(key string) string {
	r := []rune(key)
	if len(r) <= maxDisplayKey {
		return key
	}
	return string(r[:maxDisplayKey-3]) + "..."
}
