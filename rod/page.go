// Package rod implements unfold.Page on top of a live Chrome tab driven by
// the DevTools protocol.
package rod

import (
	"context"
	"sync"

	"github.com/fwojciec/unfold"
	"github.com/go-rod/rod"
)

// Compile-time interface verification.
var (
	_ unfold.PageSession = (*Page)(nil)
	_ unfold.Element     = (*Element)(nil)
)

// Page is an open browser tab.
type Page struct {
	page    *rod.Page
	release func()

	closeOnce sync.Once
	closeErr  error
}

// NewPage wraps an already navigated rod page. Closing the returned Page
// closes the tab.
func NewPage(page *rod.Page) *Page {
	return &Page{page: page}
}

// Query returns the elements currently matching selector. It does not wait
// for elements to appear.
func (p *Page) Query(ctx context.Context, selector string) ([]unfold.Element, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}

	elements := make([]unfold.Element, len(els))
	for i, el := range els {
		elements[i] = &Element{el: el}
	}
	return elements, nil
}

// URL returns the tab's current location.
func (p *Page) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// HTML returns the rendered document.
func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

// Close closes the tab. Close is safe to call multiple times.
func (p *Page) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.page.Close()
		if p.release != nil {
			p.release()
		}
	})
	return p.closeErr
}

// Element is a handle to a node of a live page.
type Element struct {
	el *rod.Element
}

// stateJS reads the element's computed state. Boxes are reported in document
// coordinates so that keys survive scrolling.
const stateJS = `() => {
	const style = window.getComputedStyle(this);
	const rect = this.getBoundingClientRect();
	const vw = window.innerWidth || document.documentElement.clientWidth;
	const vh = window.innerHeight || document.documentElement.clientHeight;
	return {
		tag: this.tagName.toLowerCase(),
		href: this.getAttribute('href') || '',
		text: (this.innerText || this.textContent || '').trim(),
		display: style.display,
		visibility: style.visibility,
		opacity: style.opacity,
		disabled: this.disabled === true,
		ariaDisabled: this.getAttribute('aria-disabled') || '',
		classes: Array.from(this.classList),
		rendered: this.offsetParent !== null || style.position === 'fixed',
		inViewport: rect.width > 0 && rect.height > 0 &&
			rect.bottom > 0 && rect.right > 0 && rect.top < vh && rect.left < vw,
		box: {
			top: rect.top + window.scrollY,
			left: rect.left + window.scrollX,
			width: rect.width,
			height: rect.height,
		},
	};
}`

// clickJS dispatches a click from script. Overlays and sticky headers that
// would intercept a synthesized mouse event do not intercept it.
const clickJS = `() => {
	this.scrollIntoView({block: 'center', inline: 'center'});
	this.click();
}`

// State evaluates the element's state in the page.
func (e *Element) State(ctx context.Context) (unfold.ElementState, error) {
	res, err := e.el.Context(ctx).Eval(stateJS)
	if err != nil {
		return unfold.ElementState{}, err
	}

	var s unfold.ElementState
	if err := res.Value.Unmarshal(&s); err != nil {
		return unfold.ElementState{}, unfold.Errorf(unfold.EINTERNAL, "decoding element state: %v", err)
	}
	return s, nil
}

// Click scrolls the element into view and clicks it.
func (e *Element) Click(ctx context.Context) error {
	_, err := e.el.Context(ctx).Eval(clickJS)
	return err
}
