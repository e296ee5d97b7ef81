package main_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fwojciec/unfold"
	main "github.com/fwojciec/unfold/cmd/unfold"
	"github.com/fwojciec/unfold/goquery"
	"github.com/fwojciec/unfold/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.DiscardHandler)

// fastConfig defines a behavior with short waits so runs against the system
// clock finish quickly.
const fastConfig = `behaviors:
  - name: stats
    hosts: ["*.example.gov"]
    steps:
      - name: expand
        kind: one-shot
        selectors: [".dynamic-filter button"]
        wait_timeout: 50ms
        max_iterations: 10
`

const statsPage = `<html><body>
	<div class="dynamic-filter"><button>Region</button><button>Year</button></div>
</body></html>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func staticOpener() *mock.PageOpener {
	return &mock.PageOpener{
		OpenFn: func(ctx context.Context, url string) (unfold.PageSession, error) {
			return goquery.NewPage(statsPage, url)
		},
	}
}

func TestMain_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	config := writeFile(t, "behaviors.yaml", fastConfig)

	m := main.NewMain()
	m.DBPath = filepath.Join(dir, "unfold.db")
	m.Opener = staticOpener()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), []string{
		"--config", config,
		"run",
		"https://stats.example.gov/population",
		"https://stats.example.gov/population#chart",
		"--out", filepath.Join(dir, "snapshots"),
	}, stdout, stderr)
	require.NoError(t, err, stderr.String())

	assert.Contains(t, stdout.String(), "expand: clicked text:Region")
	assert.Contains(t, stdout.String(), "expand: clicked text:Year")
	assert.Contains(t, stdout.String(), "Ran 1 pages (2 clicks, 0 failed)")

	snapshot, err := os.ReadFile(filepath.Join(dir, "snapshots", "stats.example.gov", "population.html"))
	require.NoError(t, err)
	assert.Contains(t, string(snapshot), "<!-- source: https://stats.example.gov/population")
	assert.Contains(t, string(snapshot), "<button>Year</button>")

	// The run is listed from a fresh program against the same database.
	m2 := main.NewMain()
	m2.DBPath = m.DBPath
	stdout.Reset()
	err = m2.Run(context.Background(), []string{"runs", "--url", "https://stats.example.gov/population"}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "https://stats.example.gov/population  stats  2 clicks  ok")

	id := regexp.MustCompile(`^\S+`).FindString(stdout.String())
	require.NotEmpty(t, id)

	m3 := main.NewMain()
	m3.DBPath = m.DBPath
	stdout.Reset()
	err = m3.Run(context.Background(), []string{"runs", id}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "behavior:  stats")
	assert.Contains(t, stdout.String(), unfold.CompletionMessage)
}

func TestMain_Run_Behaviors(t *testing.T) {
	t.Parallel()

	t.Run("prints built-in behaviors without a config", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DBPath = filepath.Join(t.TempDir(), "unfold.db")

		stdout := &bytes.Buffer{}
		err := m.Run(context.Background(), []string{"behaviors"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Contains(t, stdout.String(), "name: default")
		assert.Contains(t, stdout.String(), "kind: repeat-until-gone")
		assert.NoFileExists(t, m.DBPath)
	})

	t.Run("reports an invalid config", func(t *testing.T) {
		t.Parallel()

		config := writeFile(t, "bad.yaml", "behaviors: []\n")
		m := main.NewMain()
		m.DBPath = filepath.Join(t.TempDir(), "unfold.db")

		stderr := &bytes.Buffer{}
		err := m.Run(context.Background(), []string{"--config", config, "behaviors"}, &bytes.Buffer{}, stderr)
		require.Error(t, err)
		assert.Equal(t, unfold.EINVALID, unfold.ErrorCode(err))
		assert.Contains(t, stderr.String(), "no behaviors defined")
	})
}

func TestMain_Run_StaticSitemap(t *testing.T) {
	t.Parallel()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = w.Write([]byte("Sitemap: " + srv.URL + "/sitemap.xml\n"))
		case "/sitemap.xml":
			_, _ = w.Write([]byte(`<urlset><url><loc>` + srv.URL + `/datasets/a</loc></url>` +
				`<url><loc>` + srv.URL + `/datasets/b</loc></url>` +
				`<url><loc>` + srv.URL + `/about</loc></url></urlset>`))
		case "/datasets/a", "/datasets/b":
			_, _ = w.Write([]byte(statsPage))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	config := writeFile(t, "behaviors.yaml", strings.Replace(fastConfig, `    hosts: ["*.example.gov"]`+"\n", "", 1))

	m := main.NewMain()
	m.DBPath = filepath.Join(dir, "unfold.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), []string{
		"--config", config,
		"run", "--static",
		"--sitemap", srv.URL,
		"--include", "/datasets/",
		"--rps", "100",
		"--out", filepath.Join(dir, "snapshots"),
	}, stdout, stderr)
	require.NoError(t, err, stderr.String())

	assert.Contains(t, stdout.String(), "Found 2 URLs in sitemaps")
	assert.Contains(t, stdout.String(), "Ran 2 pages (4 clicks, 0 failed)")
	assert.DirExists(t, filepath.Join(dir, "snapshots", "127.0.0.1", "datasets"))
}

func TestMain_Run_RequiresURLs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "unfold.db")
	m.Opener = staticOpener()

	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), []string{"run"}, &bytes.Buffer{}, stderr)
	require.Error(t, err)
	assert.Equal(t, unfold.EINVALID, unfold.ErrorCode(err))
	assert.Contains(t, stderr.String(), "no URLs to run")
}
