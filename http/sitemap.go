package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/unfold"
)

// maxSitemaps bounds how many sitemap documents one discovery may fetch.
const maxSitemaps = 500

// Ensure SitemapService implements unfold.SitemapService at compile time.
var _ unfold.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs from sitemaps over HTTP.
type SitemapService struct {
	client    *http.Client
	userAgent string
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client, userAgent: DefaultUserAgent}
}

// DiscoverURLs returns the URLs listed in the site's sitemaps, in sitemap
// order and without repeats. It returns an empty slice if the site has no
// sitemap.
//
// When siteURL has a path (e.g., https://stats.example.gov/datasets), only
// URLs under that path are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, siteURL string, filter *unfold.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	site, err := url.Parse(siteURL)
	if err != nil || site.Host == "" {
		return nil, unfold.Errorf(unfold.EINVALID, "invalid site URL %q", siteURL)
	}

	roots, err := s.sitemapRoots(ctx, site)
	if err != nil {
		return nil, err
	}

	d := &discovery{
		service:  s,
		prefix:   pathPrefix(site.Path),
		filter:   filter,
		visited:  make(map[string]bool),
		included: make(map[string]bool),
		urls:     []string{},
	}
	for _, root := range roots {
		if err := d.walk(ctx, root); err != nil {
			return nil, err
		}
	}
	return d.urls, nil
}

// discovery is the state of one DiscoverURLs call.
type discovery struct {
	service  *SitemapService
	prefix   string
	filter   *unfold.URLFilter
	visited  map[string]bool
	included map[string]bool
	urls     []string
}

// walk reads one sitemap document, descending into nested sitemaps.
func (d *discovery) walk(ctx context.Context, sitemapURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.visited[sitemapURL] {
		return nil
	}
	if len(d.visited) >= maxSitemaps {
		return unfold.Errorf(unfold.EINVALID, "more than %d sitemaps", maxSitemaps)
	}
	d.visited[sitemapURL] = true

	body, err := d.service.get(ctx, sitemapURL)
	if err != nil {
		return err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return unfold.Errorf(unfold.EINVALID, "parsing sitemap %s: %v", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return unfold.Errorf(unfold.EINVALID, "empty sitemap %s", sitemapURL)
	}

	switch root.Tag {
	case "sitemapindex":
		for _, loc := range locations(root, "sitemap") {
			if err := d.walk(ctx, loc); err != nil {
				return err
			}
		}
	case "urlset":
		for _, loc := range locations(root, "url") {
			d.add(loc)
		}
	default:
		return unfold.Errorf(unfold.EINVALID, "unexpected <%s> root in sitemap %s", root.Tag, sitemapURL)
	}
	return nil
}

func (d *discovery) add(loc string) {
	if d.included[loc] {
		return
	}
	if d.prefix != "" && !underPrefix(loc, d.prefix) {
		return
	}
	if !d.filter.Match(loc) {
		return
	}
	d.included[loc] = true
	d.urls = append(d.urls, loc)
}

// locations returns the <loc> text of every child entry named tag.
func locations(root *etree.Element, tag string) []string {
	var out []string
	for _, entry := range root.SelectElements(tag) {
		loc := entry.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// pathPrefix normalizes a site path to a directory prefix ("/datasets/").
// The root path yields no prefix.
func pathPrefix(p string) string {
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// underPrefix reports whether rawURL's path lies under prefix.
// "/datasets/" covers "/datasets" and "/datasets/x" but not "/datasetsx".
func underPrefix(rawURL, prefix string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Path+"/" == prefix || strings.HasPrefix(u.Path, prefix)
}

// sitemapRoots returns the sitemaps named in robots.txt, or /sitemap.xml
// when robots.txt names none and it exists.
func (s *SitemapService) sitemapRoots(ctx context.Context, site *url.URL) ([]string, error) {
	root := &url.URL{Scheme: site.Scheme, Host: site.Host}

	if sitemaps, err := s.robotsSitemaps(ctx, root.JoinPath("robots.txt").String()); err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}

	fallback := root.JoinPath("sitemap.xml").String()
	ok, err := s.exists(ctx, fallback)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	return []string{fallback}, nil
}

// robotsSitemaps reads the Sitemap: directives of a robots.txt file.
func (s *SitemapService) robotsSitemaps(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			continue
		}
		if v := strings.TrimSpace(value); v != "" {
			sitemaps = append(sitemaps, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

func (s *SitemapService) get(ctx context.Context, target string) (io.ReadCloser, error) {
	resp, err := s.do(ctx, http.MethodGet, target)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}

func (s *SitemapService) exists(ctx context.Context, target string) (bool, error) {
	resp, err := s.do(ctx, http.MethodHead, target)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (s *SitemapService) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	return s.client.Do(req)
}
