// Package fs provides file-based storage for page snapshots.
package fs

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/unfold"
)

// URLToPath converts a page URL to a relative file path under its host.
// Pages that differ only by query string get distinct files, since
// paginated and filtered views are usually addressed that way.
//
// Example: https://stats.example.gov/data/report?page=2 →
// stats.example.gov/data/report-1a2b3c4d.html
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", unfold.Errorf(unfold.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", unfold.Errorf(unfold.EINVALID, "URL %q has no host", rawURL)
	}

	p := u.Path
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", unfold.Errorf(unfold.EINVALID, "path traversal in URL %q", rawURL)
		}
	}

	switch {
	case p == "" || p == "/":
		p = "index"
	case strings.HasSuffix(p, "/"):
		p += "index"
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")

	if u.RawQuery != "" {
		p += fmt.Sprintf("-%08x", uint32(xxhash.Sum64String(u.RawQuery)))
	}
	return host + "/" + p + ".html", nil
}
