package unfold

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

// Target key prefixes. Keys of different kinds never collide.
const (
	KeyPrefixHref = "href:"
	KeyPrefixText = "text:"
	KeyPrefixBox  = "box:"
)

// TargetKey derives a stable identity for a control from its state.
// Handles cannot be compared across re-queries because the page may replace
// the subtree, so the key falls back from href to visible text to geometry.
func TargetKey(s ElementState) string {
	return TargetKeyAt(s, "")
}

// TargetKeyAt is TargetKey for a control on the page at base. Hrefs are
// resolved against base, and links to base's own host are keyed by path,
// so relative and absolute forms of one link share a key.
func TargetKeyAt(s ElementState, base string) string {
	if href := ResolveHref(s.Href, base); href != "" {
		return KeyPrefixHref + href
	}
	if text := NormalizeText(s.Text); text != "" {
		return KeyPrefixText + text
	}
	return KeyPrefixBox + fmt.Sprintf("%d-%d-%d-%d",
		round(s.Box.Top), round(s.Box.Left), round(s.Box.Width), round(s.Box.Height))
}

// NormalizeHref returns a canonical form of href, or "" if the href does not
// identify a target (empty, a bare "#", or a javascript: URL).
func NormalizeHref(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// ResolveHref normalizes href and resolves it against base. Fragment-only
// hrefs are kept as they are since they address client-side routes. An
// empty or unparsable base leaves href unresolved.
func ResolveHref(href, base string) string {
	href = NormalizeHref(href)
	if href == "" || base == "" || strings.HasPrefix(href, "#") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	u := b.ResolveReference(ref)
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Scheme == strings.ToLower(b.Scheme) && u.Host == strings.ToLower(b.Host) && strings.HasPrefix(u.Path, "/") {
		u.Scheme, u.Host, u.User = "", "", nil
	}
	return u.String()
}

// NormalizeText trims text and collapses internal whitespace.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func round(v float64) int64 {
	return int64(math.Round(v))
}
