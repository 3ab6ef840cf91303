package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifestlab/puppetmill/pkg/corpus"
)

const docsPage = `<html><body>
<h2>Managing services with Puppet</h2>
<p>This example shows a service resource.</p>
<pre>service { 'nginx':
  ensure => running,
  enable => true,
}</pre>
<p>Unrelated prose follows.</p>
<div class="highlight-puppet"><pre>package { 'nginx':
  ensure => installed,
}</pre></div>
<pre>just some shell output, nothing interesting in here at all</pre>
</body></html>`

func newTestWebScraper(t *testing.T, rawBase string) *WebScraper {
	t.Helper()
	scraper, err := NewWebScraper(&WebScraperConfig{
		Logger:  testLogger(t),
		Fetcher: testFetcher(t),
		RawBase: rawBase,
	})
	require.NoError(t, err)
	return scraper
}

func TestWebScrapePageHTML(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(docsPage))
	}))
	defer srv.Close()

	examples, err := newTestWebScraper(t, srv.URL).ScrapePage(context.Background(), srv.URL+"/docs")
	require.NoError(t, err)
	require.Len(t, examples, 2)

	require.Contains(t, examples[0].Code, "service { 'nginx'")
	require.Equal(t, "This example shows a service resource.", examples[0].Description)
	require.Equal(t, corpus.KindHTMLBlock, examples[0].Kind)
	require.GreaterOrEqual(t, examples[0].Score, 2)

	require.Contains(t, examples[1].Code, "package { 'nginx'")
}

func TestWebScrapePageRawManifest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("class mysql::server {\n  package { 'mysql-server': ensure => installed }\n}\n"))
	}))
	defer srv.Close()

	examples, err := newTestWebScraper(t, srv.URL).ScrapePage(context.Background(), srv.URL+"/manifests/server.pp")
	require.NoError(t, err)
	require.Len(t, examples, 1)
	require.Equal(t, corpus.KindRawFile, examples[0].Kind)
	require.Equal(t, 10, examples[0].Score)
	require.Contains(t, examples[0].Code, "mysql::server")
}

func TestWebScrapeDocsProbesWellKnownPaths(t *testing.T) {
	t.Parallel()

	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		if r.URL.Path == "/puppetlabs/puppetlabs-mysql/main/manifests/server.pp" {
			w.Write([]byte("class mysql::server {\n  package { 'mysql-server': ensure => installed }\n  service { 'mysql': ensure => running }\n}\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	examples, err := newTestWebScraper(t, srv.URL).ScrapeDocs(context.Background(), nil, []string{"puppetlabs/puppetlabs-mysql"})
	require.NoError(t, err)
	require.Len(t, examples, 1)
	require.Equal(t, "Puppet mysql module - server manifest", examples[0].Description)
	// init.pp on main and master were probed before server.pp hit.
	require.Equal(t, []string{
		"/puppetlabs/puppetlabs-mysql/main/manifests/init.pp",
		"/puppetlabs/puppetlabs-mysql/master/manifests/init.pp",
		"/puppetlabs/puppetlabs-mysql/main/manifests/server.pp",
	}, hits)
}

func TestWebScrapeDocsDedupes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(docsPage))
	}))
	defer srv.Close()

	examples, err := newTestWebScraper(t, srv.URL).ScrapeDocs(context.Background(), []string{srv.URL + "/a", srv.URL + "/b"}, nil)
	require.NoError(t, err)
	require.Len(t, examples, 2)
}

func TestRawFileDescription(t *testing.T) {
	t.Parallel()

	desc := rawFileDescription("https://raw.githubusercontent.com/puppetlabs/puppetlabs-apache/main/manifests/init.pp")
	require.Equal(t, "Puppet apache module - init manifest", desc)

	desc = rawFileDescription("https://example.com/site.pp")
	require.Equal(t, "Puppet manifest site.pp", desc)
}

func TestExtractFromHTMLSkipsShortAndNonPuppet(t *testing.T) {
	t.Parallel()

	page := `<html><body><pre>x</pre><pre>echo hello world this is shell not config management</pre></body></html>`
	examples := extractFromHTML([]byte(page), "test")
	require.Empty(t, examples)
}
