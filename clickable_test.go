package unfold_test

import (
	"testing"

	"github.com/fwojciec/unfold"
	"github.com/stretchr/testify/assert"
)

func visibleState() unfold.ElementState {
	return unfold.ElementState{
		Tag:        "button",
		Display:    "inline-block",
		Visibility: "visible",
		Opacity:    "1",
		Rendered:   true,
		InViewport: true,
	}
}

func TestIsClickable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(s *unfold.ElementState)
		want   bool
	}{
		{"visible enabled element", func(s *unfold.ElementState) {}, true},
		{"display none", func(s *unfold.ElementState) { s.Display = "none" }, false},
		{"visibility hidden", func(s *unfold.ElementState) { s.Visibility = "hidden" }, false},
		{"visibility collapse", func(s *unfold.ElementState) { s.Visibility = "collapse" }, false},
		{"opacity zero", func(s *unfold.ElementState) { s.Opacity = "0" }, false},
		{"opacity zero with decimals", func(s *unfold.ElementState) { s.Opacity = "0.0" }, false},
		{"semi transparent", func(s *unfold.ElementState) { s.Opacity = "0.4" }, true},
		{"unparseable opacity", func(s *unfold.ElementState) { s.Opacity = "inherit" }, true},
		{"empty computed style", func(s *unfold.ElementState) { s.Display, s.Visibility, s.Opacity = "", "", "" }, true},
		{"disabled property", func(s *unfold.ElementState) { s.Disabled = true }, false},
		{"aria-disabled true", func(s *unfold.ElementState) { s.AriaDisabled = "true" }, false},
		{"aria-disabled false", func(s *unfold.ElementState) { s.AriaDisabled = "false" }, true},
		{"disabled class", func(s *unfold.ElementState) { s.Classes = []string{"btn", "disabled"} }, false},
		{"BEM disabled modifier", func(s *unfold.ElementState) { s.Classes = []string{"pager__next--disabled"} }, false},
		{"utility disabled class", func(s *unfold.ElementState) { s.Classes = []string{"is-disabled"} }, false},
		{"class merely containing disabled", func(s *unfold.ElementState) { s.Classes = []string{"disabled-look-toggle"} }, true},
		{"not rendered but in viewport", func(s *unfold.ElementState) { s.Rendered = false }, true},
		{"rendered but off screen", func(s *unfold.ElementState) { s.InViewport = false }, true},
		{"detached from layout", func(s *unfold.ElementState) { s.Rendered, s.InViewport = false, false }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := visibleState()
			tt.mutate(&s)

			assert.Equal(t, tt.want, unfold.IsClickable(s))
		})
	}
}
