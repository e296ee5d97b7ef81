package unfold

import (
	"context"
	"time"
)

// Page is a live document the engine reads and mutates.
// The document is owned by the page's own scripts; it may change between
// any two calls, so implementations never cache element handles.
type Page interface {
	// Query returns fresh handles for every element matching the CSS
	// selector, in document order. Query never waits for elements to appear.
	Query(ctx context.Context, selector string) ([]Element, error)

	// URL returns the current location of the page.
	URL(ctx context.Context) (string, error)
}

// Element is a handle to a DOM element. A handle may go stale as soon as the
// page mutates; State and Click return an error for detached elements.
type Element interface {
	// State returns a snapshot of the element's interaction-relevant state.
	State(ctx context.Context) (ElementState, error)

	// Click scrolls the element into view and clicks it.
	Click(ctx context.Context) error
}

// ElementState is a snapshot of an element taken at one instant.
type ElementState struct {
	Tag          string   `json:"tag"`
	Href         string   `json:"href"`
	Text         string   `json:"text"`
	Display      string   `json:"display"`
	Visibility   string   `json:"visibility"`
	Opacity      string   `json:"opacity"`
	Disabled     bool     `json:"disabled"`
	AriaDisabled string   `json:"ariaDisabled"`
	Classes      []string `json:"classes"`

	// Rendered reports whether the element has a rendering parent.
	Rendered bool `json:"rendered"`

	// InViewport reports whether the element's box intersects the viewport.
	InViewport bool `json:"inViewport"`

	// Box is the element's border box in document coordinates.
	Box Rect `json:"box"`
}

// Rect is an axis-aligned box in CSS pixels.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clock abstracts time for every suspension point of the engine.
type Clock interface {
	Now() time.Time

	// Sleep blocks for d or until ctx is done, whichever comes first.
	// It returns ctx.Err() when interrupted.
	Sleep(ctx context.Context, d time.Duration) error
}

// PageSession is a page opened by a host for one behavior run.
type PageSession interface {
	Page

	// HTML returns the serialized document as currently rendered.
	HTML(ctx context.Context) (string, error)

	// Close releases the page.
	Close() error
}

// PageOpener opens pages for behavior runs.
type PageOpener interface {
	// Open navigates a new page to url and waits for it to load.
	Open(ctx context.Context, url string) (PageSession, error)
}
