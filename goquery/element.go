package goquery

import (
	"context"
	"strings"

	"github.com/fwojciec/unfold"
	"golang.org/x/net/html"
)

// Element is a handle to a node of a static Page.
type Element struct {
	page *Page
	node *html.Node
}

// formControls are the elements that expose a disabled property.
var formControls = map[string]bool{
	"button":   true,
	"fieldset": true,
	"input":    true,
	"optgroup": true,
	"option":   true,
	"select":   true,
	"textarea": true,
}

// State derives the element's state from its markup. Static documents have
// no layout: inline styles and the hidden attribute stand in for computed
// style, and boxes stack in document order.
func (e *Element) State(ctx context.Context) (unfold.ElementState, error) {
	if err := ctx.Err(); err != nil {
		return unfold.ElementState{}, err
	}
	if !e.page.attached(e.node) {
		return unfold.ElementState{}, unfold.Errorf(unfold.ENOTFOUND, "element <%s> is detached", e.node.Data)
	}

	style := parseStyle(attr(e.node, "style"))
	display := style["display"]
	if hasAttr(e.node, "hidden") {
		display = "none"
	}

	ordinal := e.page.ordinal(e.node)
	return unfold.ElementState{
		Tag:          e.node.Data,
		Href:         attr(e.node, "href"),
		Text:         unfold.NormalizeText(e.page.doc.FindNodes(e.node).Text()),
		Display:      display,
		Visibility:   inheritedVisibility(e.node),
		Opacity:      style["opacity"],
		Disabled:     formControls[e.node.Data] && hasAttr(e.node, "disabled"),
		AriaDisabled: attr(e.node, "aria-disabled"),
		Classes:      strings.Fields(attr(e.node, "class")),
		Rendered:     rendered(e.node),
		Box:          unfold.Rect{Top: float64(ordinal), Width: 1, Height: 1},
	}, nil
}

// Click records the click and runs every matching hook.
func (e *Element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !e.page.attached(e.node) {
		return unfold.Errorf(unfold.ENOTFOUND, "element <%s> is detached", e.node.Data)
	}

	sel := e.page.doc.FindNodes(e.node)
	e.page.clicks = append(e.page.clicks, describe(e.node, sel.Text()))
	for _, h := range e.page.hooks {
		if h.matcher.Match(e.node) {
			h.fn(e.page.doc, sel)
		}
	}
	return nil
}

// rendered reports whether no ancestor-or-self removes n from layout.
func rendered(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if hasAttr(cur, "hidden") {
			return false
		}
		if parseStyle(attr(cur, "style"))["display"] == "none" {
			return false
		}
	}
	return true
}

// inheritedVisibility resolves the visibility property, which inherits.
func inheritedVisibility(n *html.Node) string {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if v, ok := parseStyle(attr(cur, "style"))["visibility"]; ok {
			return v
		}
	}
	return "visible"
}

// parseStyle parses an inline style attribute into lower-case properties.
func parseStyle(style string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		if name != "" {
			props[name] = strings.ToLower(strings.TrimSpace(value))
		}
	}
	return props
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return true
		}
	}
	return false
}

func describe(n *html.Node, text string) string {
	var b strings.Builder
	b.WriteString(n.Data)
	if id := attr(n, "id"); id != "" {
		b.WriteString("#")
		b.WriteString(id)
	}
	if text = unfold.NormalizeText(text); text != "" {
		b.WriteString(" ")
		b.WriteString(text)
	}
	return b.String()
}
