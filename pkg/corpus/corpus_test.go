package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreSaveLoad(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	examples := []Example{
		{Code: "package { 'nginx': ensure => installed }", Description: "Install nginx", Source: "https://example.com/a", Score: 3, Kind: KindHTMLBlock},
		{Code: "class apache {}", Description: "Apache class", Source: "https://example.com/b", Score: 2, Kind: KindHTMLBlock},
	}
	require.NoError(t, store.Save("web", examples))

	got, err := store.Load("web")
	require.NoError(t, err)
	require.Equal(t, examples, got)
}

func TestStoreLoadMissing(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nope")
	require.True(t, os.IsNotExist(err))
}

func TestStoreLoadAllSkipsSummaries(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	web := []Example{{Code: "a", Kind: KindHTMLBlock}}
	gh := []Example{{Code: "b", Kind: KindGitHubManifest}, {Code: "c", Kind: KindGitHubManifest}}
	require.NoError(t, store.Save("web", web))
	require.NoError(t, store.Save("github", gh))
	require.NoError(t, store.WriteSummary(NewSummary("web", web, []string{"https://example.com"})))

	all, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestStoreSaveManifestFlattensPath(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.SaveManifest("puppetlabs", "puppetlabs-apache", "manifests/vhost/proxy.pp", []byte("class apache::vhost::proxy {}"))
	require.NoError(t, err)
	require.Equal(t, "manifests_vhost_proxy.pp", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "apache::vhost::proxy")
}

func TestNewSummaryCounts(t *testing.T) {
	t.Parallel()

	examples := []Example{
		{Code: "a", Source: "s1"},
		{Code: "b", Source: "s1"},
		{Code: "c", Source: "s2"},
	}
	sum := NewSummary("web", examples, []string{"s1", "s2"})
	require.NotEmpty(t, sum.RunID)
	require.Equal(t, 3, sum.TotalExamples)
	require.Equal(t, 2, sum.ExamplesBySource["s1"])
	require.Equal(t, 1, sum.ExamplesBySource["s2"])
}
