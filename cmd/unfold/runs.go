package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/unfold"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	if c.ID != "" {
		return c.show(deps)
	}

	filter := unfold.RunFilter{Limit: c.Limit}
	if c.URL != "" {
		filter.URL = &c.URL
	}
	if c.Behavior != "" {
		filter.Behavior = &c.Behavior
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unfold.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'unfold run' to record one.")
		return nil
	}

	for _, r := range runs {
		status := "ok"
		if r.Error != "" {
			status = "failed: " + r.Error
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s  %d clicks  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.URL, r.Behavior, r.Clicks, status)
	}

	return nil
}

func (c *RunsCmd) show(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unfold.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Run %s\n", run.ID)
	fmt.Fprintf(deps.Stdout, "  url:       %s\n", run.URL)
	fmt.Fprintf(deps.Stdout, "  behavior:  %s\n", run.Behavior)
	fmt.Fprintf(deps.Stdout, "  duration:  %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(deps.Stdout, "  clicks:    %d\n", run.Clicks)
	if run.SnapshotHash != "" {
		fmt.Fprintf(deps.Stdout, "  snapshot:  %s\n", run.SnapshotHash)
	}
	if run.Error != "" {
		fmt.Fprintf(deps.Stdout, "  error:     %s\n", run.Error)
	}

	for _, ev := range run.Events {
		fmt.Fprintf(deps.Stdout, "  %s  %s\n", ev.Time.Sub(run.StartedAt).Round(time.Millisecond), ev)
	}
	return nil
}
