package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/unfold"
	"github.com/fwojciec/unfold/behavior"
	"github.com/fwojciec/unfold/crawl"
	"github.com/fwojciec/unfold/goquery"
	unfoldslog "github.com/fwojciec/unfold/slog"
)

// Run executes the preview command. The page is static, so no control ever
// reacts to a click; the output lists every control a live run would try.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	b, ok := behavior.Select(deps.Behaviors, c.URL)
	if !ok {
		err := unfold.Errorf(unfold.EINVALID, "no behavior applies to %s", c.URL)
		fmt.Fprintf(deps.Stderr, "error: %s\n", unfold.ErrorMessage(err))
		return err
	}

	page, err := c.open(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unfold.ErrorMessage(err))
		return err
	}
	defer page.Close()

	html, err := page.HTML(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unfold.ErrorMessage(err))
		return err
	}

	clock := behavior.NewVirtualClock(time.Now())
	engine := behavior.NewEngine(behavior.WithClock(clock), behavior.WithLogger(deps.Logger))

	fmt.Fprintf(deps.Stdout, "Behavior %q on %s (%s)\n", b.Name, c.URL, crawl.FormatBytes(len(html)))
	start := clock.Now()
	var clicks int
	for ev := range unfoldslog.LogProgress(deps.Logger, c.URL, engine.Run(deps.Ctx, page, b.Steps)) {
		if ev.Done {
			continue
		}
		if behavior.IsClick(ev) {
			clicks++
		}
		fmt.Fprintf(deps.Stdout, "  %s\n", ev)
	}

	fmt.Fprintf(deps.Stdout, "Would click %d controls (about %s of waiting)\n", clicks, clock.Now().Sub(start))
	return nil
}

// open reads the saved file, or fetches the URL when no file is given.
func (c *PreviewCmd) open(deps *Dependencies) (unfold.PageSession, error) {
	if c.File == "" {
		return deps.Opener.Open(deps.Ctx, c.URL)
	}
	content, err := os.ReadFile(c.File)
	if err != nil {
		return nil, err
	}
	return goquery.NewPage(string(content), c.URL)
}
