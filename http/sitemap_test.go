package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/unfold"
	unfoldhttp "github.com/fwojciec/unfold/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, loc := range locs {
		b.WriteString("  <url><loc>" + loc + "</loc></url>\n")
	}
	b.WriteString("</urlset>")
	return b.String()
}

func sitemapIndex(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, loc := range locs {
		b.WriteString("  <sitemap><loc>" + loc + "</loc></sitemap>\n")
	}
	b.WriteString("</sitemapindex>")
	return b.String()
}

func TestSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("reads sitemaps named in robots.txt", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "User-agent: *\nDisallow: /private/\nSitemap: {{BASE}}/sm-1.xml\nsitemap: {{BASE}}/sm-2.xml\n",
			"/sm-1.xml":   urlset("{{BASE}}/datasets/population", "{{BASE}}/datasets/trade"),
			"/sm-2.xml":   urlset("{{BASE}}/bulletins/2024"),
		})

		urls, err := unfoldhttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{
			srv.URL + "/datasets/population",
			srv.URL + "/datasets/trade",
			srv.URL + "/bulletins/2024",
		}, urls)
	})

	t.Run("falls back to sitemap.xml", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset("{{BASE}}/page1"),
		})

		urls, err := unfoldhttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/page1"}, urls)
	})

	t.Run("follows sitemap indexes once each", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml":          sitemapIndex("{{BASE}}/sitemap-datasets.xml", "{{BASE}}/sitemap-nested.xml"),
			"/sitemap-nested.xml":   sitemapIndex("{{BASE}}/sitemap.xml", "{{BASE}}/sitemap-bulletins.xml"),
			"/sitemap-datasets.xml": urlset("{{BASE}}/datasets/population"),
			"/sitemap-bulletins.xml": urlset(
				"{{BASE}}/bulletins/2024",
				"{{BASE}}/datasets/population",
			),
		})

		urls, err := unfoldhttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{
			srv.URL + "/datasets/population",
			srv.URL + "/bulletins/2024",
		}, urls)
	})

	t.Run("keeps only URLs under the site path", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset(
				"{{BASE}}/datasets",
				"{{BASE}}/datasets/population",
				"{{BASE}}/datasets-archive/1999",
				"{{BASE}}/about",
			),
		})

		urls, err := unfoldhttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL+"/datasets", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/datasets", srv.URL + "/datasets/population"}, urls)
	})

	t.Run("applies the filter", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset(
				"{{BASE}}/datasets/population",
				"{{BASE}}/datasets/internal/debug",
				"{{BASE}}/blog/post1",
			),
		})
		filter, err := unfold.NewURLFilter([]string{`/datasets/`}, []string{`/internal/`})
		require.NoError(t, err)

		urls, err := unfoldhttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL, filter)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/datasets/population"}, urls)
	})

	t.Run("returns an empty list when the site has no sitemap", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{})

		urls, err := unfoldhttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.NotNil(t, urls)
		assert.Empty(t, urls)
	})

	t.Run("rejects malformed sitemaps", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": "<html><body>Not a sitemap</body></html>",
		})

		_, err := unfoldhttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL, nil)
		assert.Equal(t, unfold.EINVALID, unfold.ErrorCode(err))
	})

	t.Run("rejects an invalid site URL", func(t *testing.T) {
		t.Parallel()

		_, err := unfoldhttp.NewSitemapService(nil).DiscoverURLs(context.Background(), "stats.example.gov", nil)
		assert.Equal(t, unfold.EINVALID, unfold.ErrorCode(err))
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset("{{BASE}}/page1"),
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := unfoldhttp.NewSitemapService(srv.Client()).DiscoverURLs(ctx, srv.URL, nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}

// newTestServer serves content by path. {{BASE}} in content is replaced with
// the server URL. The server is closed when the test ends.
func newTestServer(t *testing.T, content map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path == "/robots.txt" {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "application/xml")
		}
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{BASE}}", srv.URL)))
	}))
	t.Cleanup(srv.Close)

	return srv
}
