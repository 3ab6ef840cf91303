package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sources describes where to collect Puppet code from. It is loaded from a
// YAML file passed via --sources.
type Sources struct {
	// Repos are GitHub repositories to mine for .pp manifests, as URLs or
	// owner/name pairs.
	Repos []string `yaml:"repos"`

	// DocURLs are documentation pages to scan for Puppet code blocks.
	DocURLs []string `yaml:"doc_urls"`

	// ModuleRepos are GitHub repositories whose well-known manifest paths
	// are probed directly.
	ModuleRepos []string `yaml:"module_repos"`

	// PDFs are local paths to PDF books or guides with Puppet examples.
	PDFs []string `yaml:"pdfs"`
}

// DefaultSources mirror the module repositories and documentation pages the
// collectors were first run against.
func DefaultSources() Sources {
	return Sources{
		Repos: []string{
			"puppetlabs/puppetlabs-apache",
			"puppetlabs/puppetlabs-mysql",
			"puppetlabs/puppetlabs-nginx",
			"puppetlabs/puppetlabs-stdlib",
			"puppetlabs/puppetlabs-firewall",
		},
		DocURLs: []string{
			"https://www.puppet.com/docs/puppet/7/lang_classes.html",
			"https://www.puppet.com/docs/puppet/7/lang_defined_types.html",
			"https://www.puppet.com/docs/puppet/7/lang_node_definitions.html",
			"https://www.puppet.com/docs/puppet/7/types/file.html",
			"https://www.puppet.com/docs/puppet/7/types/package.html",
			"https://www.puppet.com/docs/puppet/7/types/service.html",
		},
		ModuleRepos: []string{
			"puppetlabs/puppetlabs-ntp",
			"puppetlabs/puppetlabs-motd",
			"voxpupuli/puppet-nginx",
		},
	}
}

// LoadSources reads a sources file, or returns the defaults when path is
// empty.
func LoadSources(path string) (Sources, error) {
	if path == "" {
		return DefaultSources(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Sources{}, fmt.Errorf("read sources file: %w", err)
	}
	var s Sources
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Sources{}, fmt.Errorf("parse sources file %s: %w", path, err)
	}
	return s, nil
}
