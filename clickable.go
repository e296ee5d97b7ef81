package unfold

import (
	"strconv"
	"strings"
)

// IsClickable reports whether an element in the given state can actually be
// interacted with. Sites encode an inactive control in many different ways,
// so every signal has to agree.
func IsClickable(s ElementState) bool {
	if strings.EqualFold(s.Display, "none") {
		return false
	}
	switch strings.ToLower(s.Visibility) {
	case "hidden", "collapse":
		return false
	}
	if isTransparent(s.Opacity) {
		return false
	}
	if s.Disabled || strings.EqualFold(strings.TrimSpace(s.AriaDisabled), "true") {
		return false
	}
	if hasDisabledClass(s.Classes) {
		return false
	}
	return s.Rendered || s.InViewport
}

// isTransparent reports whether a computed opacity value is zero.
// Unparseable values are treated as opaque.
func isTransparent(opacity string) bool {
	opacity = strings.TrimSpace(opacity)
	if opacity == "" {
		return false
	}
	v, err := strconv.ParseFloat(opacity, 64)
	if err != nil {
		return false
	}
	return v == 0
}

// hasDisabledClass matches "disabled" and BEM/utility variants such as
// "is-disabled" or "pager__next--disabled".
func hasDisabledClass(classes []string) bool {
	for _, c := range classes {
		c = strings.ToLower(c)
		if c == "disabled" || strings.HasSuffix(c, "-disabled") || strings.HasSuffix(c, "_disabled") {
			return true
		}
	}
	return false
}
