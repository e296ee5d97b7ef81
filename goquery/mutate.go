package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SetStyle sets one inline style property on every element of sel,
// replacing any previous value of that property.
func SetStyle(sel *goquery.Selection, property, value string) {
	property = strings.ToLower(property)
	sel.Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		var decls []string
		for _, decl := range strings.Split(style, ";") {
			name, _, ok := strings.Cut(decl, ":")
			if !ok || strings.ToLower(strings.TrimSpace(name)) == property {
				continue
			}
			decls = append(decls, strings.TrimSpace(decl))
		}
		decls = append(decls, property+": "+value)
		s.SetAttr("style", strings.Join(decls, "; "))
	})
}

// Hide removes every element of sel from layout.
func Hide(sel *goquery.Selection) {
	SetStyle(sel, "display", "none")
}

// Disable marks every element of sel as disabled.
func Disable(sel *goquery.Selection) {
	sel.SetAttr("disabled", "")
}
