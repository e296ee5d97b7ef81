package main

import (
	"fmt"

	"github.com/fwojciec/unfold"
	"github.com/fwojciec/unfold/crawl"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	if c.Concurrency > 0 {
		deps.Runner.Concurrency = c.Concurrency
	}

	urls := c.URLs
	if c.Sitemap != "" {
		filter, err := unfold.NewURLFilter(c.Include, c.Exclude)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", unfold.ErrorMessage(err))
			return err
		}
		discovered, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.Sitemap, filter)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: sitemap discovery: %s\n", unfold.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "  Found %d URLs in sitemaps of %s\n", len(discovered), c.Sitemap)
		urls = append(urls, discovered...)
	}
	if len(urls) == 0 {
		err := unfold.Errorf(unfold.EINVALID, "no URLs to run; pass URLs or --sitemap")
		fmt.Fprintf(deps.Stderr, "error: %s\n", unfold.ErrorMessage(err))
		return err
	}

	progress := func(url string, ev unfold.ProgressEvent) {
		if ev.Done {
			return
		}
		fmt.Fprintf(deps.Stdout, "  %s  %s\n", crawl.TruncateURL(url, 48), ev)
	}

	runs, err := deps.Runner.Run(deps.Ctx, urls, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unfold.ErrorMessage(err))
		return err
	}

	var failed, clicks int
	for _, run := range runs {
		clicks += run.Clicks
		if run.Error != "" {
			failed++
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", run.URL, run.Error)
		}
	}

	fmt.Fprintf(deps.Stdout, "Ran %d pages (%d clicks, %d failed)\n", len(runs), clicks, failed)
	if failed > 0 {
		return unfold.Errorf(unfold.EINTERNAL, "%d of %d pages failed", failed, len(runs))
	}
	return nil
}
