package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSources_Defaults(t *testing.T) {
	t.Parallel()

	s, err := LoadSources("")
	require.NoError(t, err)
	require.NotEmpty(t, s.Repos)
	require.NotEmpty(t, s.DocURLs)
}

func TestLoadSources_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
repos:
  - puppetlabs/puppetlabs-apache
doc_urls:
  - https://example.com/docs/classes.html
module_repos:
  - voxpupuli/puppet-nginx
pdfs:
  - books/puppet-guide.pdf
`), 0o644))

	s, err := LoadSources(path)
	require.NoError(t, err)
	require.Equal(t, []string{"puppetlabs/puppetlabs-apache"}, s.Repos)
	require.Equal(t, []string{"https://example.com/docs/classes.html"}, s.DocURLs)
	require.Equal(t, []string{"voxpupuli/puppet-nginx"}, s.ModuleRepos)
	require.Equal(t, []string{"books/puppet-guide.pdf"}, s.PDFs)
}

func TestLoadSources_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadSources_BadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repos: [unclosed"), 0o644))

	_, err := LoadSources(path)
	require.Error(t, err)
}
