package unfold_test

import (
	"testing"

	"github.com/fwojciec/unfold"
	"github.com/stretchr/testify/assert"
)

func TestTargetKey(t *testing.T) {
	t.Parallel()

	t.Run("prefers href", func(t *testing.T) {
		t.Parallel()

		key := unfold.TargetKey(unfold.ElementState{Href: " /results?page=2 ", Text: "2"})

		assert.Equal(t, "href:/results?page=2", key)
	})

	t.Run("lowercases scheme and host", func(t *testing.T) {
		t.Parallel()

		key := unfold.TargetKey(unfold.ElementState{Href: "HTTPS://Example.GOV/Stats?Page=2"})

		assert.Equal(t, "href:https://example.gov/Stats?Page=2", key)
	})

	t.Run("falls back to text for placeholder hrefs", func(t *testing.T) {
		t.Parallel()

		for _, href := range []string{"", "#", "javascript:void(0)", "JavaScript:next()"} {
			key := unfold.TargetKey(unfold.ElementState{Href: href, Text: "  Next \n page "})
			assert.Equal(t, "text:Next page", key, "href %q", href)
		}
	})

	t.Run("keeps hash routes", func(t *testing.T) {
		t.Parallel()

		key := unfold.TargetKey(unfold.ElementState{Href: "#/page/3"})

		assert.Equal(t, "href:#/page/3", key)
	})

	t.Run("falls back to geometry", func(t *testing.T) {
		t.Parallel()

		key := unfold.TargetKey(unfold.ElementState{
			Text: "   ",
			Box:  unfold.Rect{Top: 1204.6, Left: 880.2, Width: 24, Height: 23.5},
		})

		assert.Equal(t, "box:1205-880-24-24", key)
	})

	t.Run("identical text on different controls collides", func(t *testing.T) {
		t.Parallel()

		a := unfold.TargetKey(unfold.ElementState{Text: "Next"})
		b := unfold.TargetKey(unfold.ElementState{Text: "Next", Box: unfold.Rect{Top: 900}})

		assert.Equal(t, a, b)
	})
	t.Run("relative and absolute links to the page's host share a key", func(t *testing.T) {
		t.Parallel()

		const base = "https://stats.example.gov/datasets/population?page=1"
		for _, href := range []string{"/datasets/population?page=2", "?page=2", "population?page=2", "HTTPS://Stats.Example.GOV/datasets/population?page=2"} {
			key := unfold.TargetKeyAt(unfold.ElementState{Href: href}, base)
			assert.Equal(t, "href:/datasets/population?page=2", key, "href %q", href)
		}
	})

	t.Run("links to other hosts stay absolute", func(t *testing.T) {
		t.Parallel()

		key := unfold.TargetKeyAt(unfold.ElementState{Href: "https://archive.example.gov/p/2"}, "https://stats.example.gov/p/1")

		assert.Equal(t, "href:https://archive.example.gov/p/2", key)
	})

	t.Run("hash routes are not resolved", func(t *testing.T) {
		t.Parallel()

		key := unfold.TargetKeyAt(unfold.ElementState{Href: "#/page/3"}, "https://stats.example.gov/app")

		assert.Equal(t, "href:#/page/3", key)
	})
}
