package mock

import (
	"context"

	"github.com/fwojciec/unfold"
)

// Compile-time interface verification.
var (
	_ unfold.Page        = (*Page)(nil)
	_ unfold.Element     = (*Element)(nil)
	_ unfold.PageSession = (*PageSession)(nil)
	_ unfold.PageOpener  = (*PageOpener)(nil)
)

// Page is a mock implementation of unfold.Page.
type Page struct {
	QueryFn func(ctx context.Context, selector string) ([]unfold.Element, error)
	URLFn   func(ctx context.Context) (string, error)
}

func (p *Page) Query(ctx context.Context, selector string) ([]unfold.Element, error) {
	return p.QueryFn(ctx, selector)
}

func (p *Page) URL(ctx context.Context) (string, error) {
	return p.URLFn(ctx)
}

// Element is a mock implementation of unfold.Element.
type Element struct {
	StateFn func(ctx context.Context) (unfold.ElementState, error)
	ClickFn func(ctx context.Context) error
}

func (e *Element) State(ctx context.Context) (unfold.ElementState, error) {
	return e.StateFn(ctx)
}

func (e *Element) Click(ctx context.Context) error {
	return e.ClickFn(ctx)
}

// PageSession is a mock implementation of unfold.PageSession.
type PageSession struct {
	Page
	HTMLFn  func(ctx context.Context) (string, error)
	CloseFn func() error
}

func (s *PageSession) HTML(ctx context.Context) (string, error) {
	return s.HTMLFn(ctx)
}

func (s *PageSession) Close() error {
	return s.CloseFn()
}

// PageOpener is a mock implementation of unfold.PageOpener.
type PageOpener struct {
	OpenFn func(ctx context.Context, url string) (unfold.PageSession, error)
}

func (o *PageOpener) Open(ctx context.Context, url string) (unfold.PageSession, error) {
	return o.OpenFn(ctx, url)
}
