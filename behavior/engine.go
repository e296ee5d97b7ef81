// Package behavior implements the page-interaction engine: it locates
// controls, clicks them in bounded loops and reports progress as a
// pull-based sequence of events.
package behavior

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/unfold"
)

// DefaultStagnationThreshold is the number of consecutive unchanged passes
// after which a traversal is considered stable.
const DefaultStagnationThreshold = 2

// errStopped signals that the consumer stopped reading events.
var errStopped = errors.New("consumer stopped")

// Engine runs behavior steps against a page.
// An Engine holds no per-run state and may be reused for any number of runs.
type Engine struct {
	clock               unfold.Clock
	pollInterval        time.Duration
	stagnationThreshold int
	logger              *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for every wait. Defaults to SystemClock.
func WithClock(c unfold.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithPollInterval sets the locator poll interval.
// Defaults to DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.pollInterval = d
	}
}

// WithStagnationThreshold sets how many consecutive unchanged passes end a
// traversal. Defaults to DefaultStagnationThreshold.
func WithStagnationThreshold(n int) Option {
	return func(e *Engine) {
		e.stagnationThreshold = n
	}
}

// WithLogger sets the logger. Defaults to discarding all output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates a new Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock:               SystemClock{},
		pollInterval:        DefaultPollInterval,
		stagnationThreshold: DefaultStagnationThreshold,
		logger:              discardLogger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pollInterval <= 0 {
		e.pollInterval = DefaultPollInterval
	}
	if e.stagnationThreshold <= 0 {
		e.stagnationThreshold = DefaultStagnationThreshold
	}
	return e
}

// Run returns the sequence of progress events produced by running steps in
// order against page. Nothing happens until the caller ranges over the
// sequence; the engine suspends at every event until the next one is
// requested, and stops as soon as the caller stops iterating.
//
// A failing step is reported and never prevents later steps from running.
// Unless the caller stops early, the last event is always the terminal
// event (Done set, message unfold.CompletionMessage).
func (e *Engine) Run(ctx context.Context, page unfold.Page, steps []unfold.Step) iter.Seq[unfold.ProgressEvent] {
	return func(yield func(unfold.ProgressEvent) bool) {
		r := &reporter{yield: yield, clock: e.clock}

		for i := range steps {
			step := steps[i]

			if err := ctx.Err(); err != nil {
				r.emit(step.Name, "aborted: %v", err)
				break
			}

			begin := e.clock.Now()
			clicks, err := e.runStep(ctx, page, step, r)
			if r.stopped {
				return
			}
			e.logger.Info("step",
				"step", step.Name,
				"kind", step.Kind,
				"clicks", clicks,
				"duration", e.clock.Now().Sub(begin),
				"err", err,
			)

			if err != nil {
				if ctx.Err() != nil {
					r.emit(step.Name, "aborted: %v", ctx.Err())
					break
				}
				if !r.emit(step.Name, "failed: %s", describe(err)) {
					return
				}
			}
		}

		r.finish()
	}
}

// runStep executes one step with fresh execution state.
func (e *Engine) runStep(ctx context.Context, page unfold.Page, step unfold.Step, r *reporter) (int, error) {
	if err := step.Validate(); err != nil {
		return 0, err
	}

	t := &traversal{
		step:    step,
		page:    page,
		locator: &Locator{Clock: e.clock, PollInterval: e.pollInterval, Logger: e.logger},
		clock:   e.clock,
		logger:  e.logger.With("step", step.Name),
		report:  r,
		state:   newExecutionState(),
	}

	var err error
	switch step.Kind {
	case unfold.KindOneShot:
		err = t.oneShot(ctx)
	case unfold.KindRepeatUntilGone:
		err = t.untilGone(ctx)
	case unfold.KindRepeatEachUntilStable:
		err = t.eachUntilStable(ctx, e.stagnationThreshold)
	default:
		err = unfold.Errorf(unfold.EINVALID, "step %q: unknown kind %q", step.Name, step.Kind)
	}
	if errors.Is(err, errStopped) {
		return t.state.clicks, nil
	}
	return t.state.clicks, err
}

// IsClick reports whether ev records a successful click.
func IsClick(ev unfold.ProgressEvent) bool {
	return !ev.Done && strings.HasPrefix(ev.Message, "clicked ")
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

// reporter delivers events to the consumer of a run.
type reporter struct {
	yield   func(unfold.ProgressEvent) bool
	clock   unfold.Clock
	stopped bool
}

// emit yields one event. It returns false once the consumer has stopped.
func (r *reporter) emit(step, format string, args ...any) bool {
	if r.stopped {
		return false
	}
	ev := unfold.ProgressEvent{
		Step:    step,
		Message: fmt.Sprintf(format, args...),
		Time:    r.clock.Now(),
	}
	if !r.yield(ev) {
		r.stopped = true
	}
	return !r.stopped
}

// finish yields the terminal event.
func (r *reporter) finish() {
	if r.stopped {
		return
	}
	r.yield(unfold.ProgressEvent{
		Message: unfold.CompletionMessage,
		Time:    r.clock.Now(),
		Done:    true,
	})
	r.stopped = true
}
