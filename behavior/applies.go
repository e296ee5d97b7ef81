package behavior

import (
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/unfold"
)

// Applies reports whether behavior b should run on the page at rawURL.
// The URL's host is matched against b.Hosts using glob patterns
// ("*.example.gov", "{www,data}.example.gov"); an empty list matches every
// host. Matching is case-insensitive.
func Applies(b unfold.Behavior, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	if len(b.Hosts) == 0 {
		return true
	}

	host := strings.ToLower(u.Hostname())
	for _, pattern := range b.Hosts {
		ok, err := doublestar.Match(strings.ToLower(pattern), host)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// Select returns the first behavior that applies to rawURL.
// The bool result is false if none applies.
func Select(behaviors []unfold.Behavior, rawURL string) (unfold.Behavior, bool) {
	for _, b := range behaviors {
		if Applies(b, rawURL) {
			return b, true
		}
	}
	return unfold.Behavior{}, false
}
