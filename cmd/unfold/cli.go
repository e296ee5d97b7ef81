package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/unfold"
	"github.com/fwojciec/unfold/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Behaviors []unfold.Behavior
	Runs      unfold.RunService
	Sitemaps  unfold.SitemapService
	Opener    unfold.PageOpener
	Runner    *crawl.Runner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"C" env:"UNFOLD_CONFIG" type:"existingfile" help:"Behavior config file (YAML)"`
	Verbose bool   `short:"v" help:"Log every query and click"`

	Run       RunCmd       `cmd:"" help:"Run behaviors against live pages and snapshot the result"`
	Preview   PreviewCmd   `cmd:"" help:"Show what a behavior would click on a static copy of a page"`
	Runs      RunsCmd      `cmd:"" help:"List recorded runs, or show one run's events"`
	Behaviors BehaviorsCmd `cmd:"" help:"Print the effective behavior config"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	URLs        []string      `arg:"" optional:"" name:"url" help:"Page URLs"`
	Sitemap     string        `help:"Also run every page listed in this site's sitemaps"`
	Include     []string      `short:"i" help:"Keep only sitemap URLs matching a regex (repeatable)"`
	Exclude     []string      `short:"x" help:"Drop sitemap URLs matching a regex (repeatable)"`
	Static      bool          `help:"Fetch pages over HTTP instead of a browser; no scripts run"`
	Out         string        `short:"o" default:"snapshots" help:"Snapshot output directory"`
	Concurrency int           `short:"c" default:"4" help:"Concurrent page limit"`
	RPS         float64       `name:"rps" default:"1" help:"Page opens per second per host; 0 disables the limit"`
	Headless    bool          `default:"true" negatable:"" help:"Run Chrome without a window"`
	Timeout     time.Duration `default:"30s" help:"Navigation timeout per page"`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	File string `arg:"" optional:"" type:"existingfile" help:"Saved HTML file; the URL is fetched when omitted"`
	URL  string `required:"" help:"URL of the page"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	ID       string `arg:"" optional:"" help:"Run ID to show"`
	URL      string `help:"Only runs of this URL"`
	Behavior string `help:"Only runs of this behavior"`
	Limit    int    `short:"n" default:"20" help:"Maximum number of runs"`
}

// BehaviorsCmd is the "behaviors" subcommand.
type BehaviorsCmd struct{}
