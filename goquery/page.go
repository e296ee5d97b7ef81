// Package goquery provides a static, script-free implementation of
// unfold.Page over an HTML document. It is used to preview which controls a
// behavior would action on a saved page, and as a deterministic fixture.
package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/unfold"
	"golang.org/x/net/html"
)

// Compile-time interface verification.
var (
	_ unfold.PageSession = (*Page)(nil)
	_ unfold.Element     = (*Element)(nil)
)

// ClickFunc simulates the page's reaction to a click on el.
// It may mutate doc freely; handles held by the engine go stale when their
// nodes are removed.
type ClickFunc func(doc *goquery.Document, el *goquery.Selection)

type clickHook struct {
	matcher cascadia.Selector
	fn      ClickFunc
}

// Page is a static document. No scripts run; reactions to clicks are
// simulated by hooks registered with OnClick.
//
// Page is not safe for concurrent use.
type Page struct {
	doc    *goquery.Document
	url    string
	hooks  []clickHook
	clicks []string
}

// NewPage parses htmlText as the document located at url.
func NewPage(htmlText, url string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, unfold.Errorf(unfold.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Page{doc: doc, url: url}, nil
}

// OnClick registers fn to run whenever an element matching selector is
// clicked. Hooks run in registration order.
func (p *Page) OnClick(selector string, fn ClickFunc) error {
	m, err := compile(selector)
	if err != nil {
		return err
	}
	p.hooks = append(p.hooks, clickHook{matcher: m, fn: fn})
	return nil
}

// Query returns the elements matching selector in document order.
func (p *Page) Query(ctx context.Context, selector string) ([]unfold.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := compile(selector)
	if err != nil {
		return nil, err
	}

	sel := p.doc.FindMatcher(m)
	elements := make([]unfold.Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		elements = append(elements, &Element{page: p, node: n})
	}
	return elements, nil
}

// URL returns the URL the page was created with.
func (p *Page) URL(ctx context.Context) (string, error) {
	return p.url, nil
}

// HTML returns the current document.
func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.doc.Html()
}

// Close is a no-op; a static page holds no resources.
func (p *Page) Close() error {
	return nil
}

// Clicks returns a description of every element clicked so far, in order.
func (p *Page) Clicks() []string {
	return append([]string(nil), p.clicks...)
}

// Document exposes the underlying document.
func (p *Page) Document() *goquery.Document {
	return p.doc
}

// attached reports whether n is still part of the document tree.
func (p *Page) attached(n *html.Node) bool {
	root := p.doc.Nodes[0]
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}

// ordinal returns the position of n among the document's elements.
func (p *Page) ordinal(n *html.Node) int {
	i := 0
	found := -1
	var walk func(*html.Node) bool
	walk = func(cur *html.Node) bool {
		if cur == n {
			found = i
			return true
		}
		if cur.Type == html.ElementNode {
			i++
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(p.doc.Nodes[0])
	return found
}

func compile(selector string) (cascadia.Selector, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, unfold.Errorf(unfold.EINVALID, "invalid selector %q: %v", selector, err)
	}
	return m, nil
}
