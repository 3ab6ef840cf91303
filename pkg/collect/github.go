package collect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/jellydator/ttlcache/v3"

	"github.com/manifestlab/puppetmill/pkg/corpus"
)

const (
	defaultTreeCacheTTL     = 10 * time.Minute
	defaultDownloadPoolSize = 8

	githubAPIBase = "https://api.github.com"
	githubRawBase = "https://raw.githubusercontent.com"
)

var defaultBranches = []string{"main", "master"}

// GitHubScraper downloads .pp manifests from module repositories using the
// git trees API and raw file downloads.
type GitHubScraper struct {
	log     *slog.Logger
	fetcher *Fetcher
	store   *corpus.Store
	apiBase string
	rawBase string

	treeCache    *ttlcache.Cache[string, *repoTree]
	downloadPool pond.ResultPool[corpus.Example]
}

// GitHubScraperConfig holds configuration for creating a GitHubScraper.
type GitHubScraperConfig struct {
	Logger  *slog.Logger
	Fetcher *Fetcher
	Store   *corpus.Store

	// Optional configuration.
	TreeCacheTTL     time.Duration
	DownloadPoolSize int
	Token            string
	APIBase          string
	RawBase          string
}

func (c *GitHubScraperConfig) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Fetcher == nil {
		return errors.New("fetcher is required")
	}
	if c.Store == nil {
		return errors.New("store is required")
	}
	if c.TreeCacheTTL == 0 {
		c.TreeCacheTTL = defaultTreeCacheTTL
	}
	if c.DownloadPoolSize == 0 {
		c.DownloadPoolSize = defaultDownloadPoolSize
	}
	if c.APIBase == "" {
		c.APIBase = githubAPIBase
	}
	if c.RawBase == "" {
		c.RawBase = githubRawBase
	}
	return nil
}

func NewGitHubScraper(cfg *GitHubScraperConfig) (*GitHubScraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Token != "" {
		if cfg.Fetcher.headers == nil {
			cfg.Fetcher.headers = map[string]string{}
		}
		cfg.Fetcher.headers["Authorization"] = "Bearer " + cfg.Token
	}
	return &GitHubScraper{
		log:          cfg.Logger,
		fetcher:      cfg.Fetcher,
		store:        cfg.Store,
		apiBase:      cfg.APIBase,
		rawBase:      cfg.RawBase,
		treeCache:    ttlcache.New(ttlcache.WithTTL[string, *repoTree](cfg.TreeCacheTTL)),
		downloadPool: pond.NewResultPool[corpus.Example](cfg.DownloadPoolSize),
	}, nil
}

type repoTree struct {
	Branch string
	Paths  []string
}

type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

// ParseRepoURL extracts owner and repo from a GitHub repository URL or an
// "owner/repo" shorthand.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(repoURL), "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("invalid repo URL %q", repoURL)
	}
	owner = parts[len(parts)-2]
	repo = parts[len(parts)-1]
	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repo URL %q", repoURL)
	}
	return owner, repo, nil
}

// ScrapeRepo lists a repository's manifests and downloads each one, saving
// raw files into the store and returning example records for them.
func (g *GitHubScraper) ScrapeRepo(ctx context.Context, repoURL string) ([]corpus.Example, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	tree, err := g.listTree(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("list %s/%s: %w", owner, repo, err)
	}

	g.log.Info("Found Puppet manifests", "owner", owner, "repo", repo, "branch", tree.Branch, "count", len(tree.Paths))

	group := g.downloadPool.NewGroupContext(ctx)
	for _, p := range tree.Paths {
		group.SubmitErr(func() (corpus.Example, error) {
			return g.downloadManifest(ctx, owner, repo, tree.Branch, p)
		})
	}

	results, err := group.Wait()
	if err != nil {
		// Partial failure keeps what succeeded; the original pipeline
		// skipped failed files and moved on.
		g.log.Warn("Some manifest downloads failed", "owner", owner, "repo", repo, "error", err)
	}

	examples := make([]corpus.Example, 0, len(results))
	for _, ex := range results {
		if ex.Code != "" {
			examples = append(examples, ex)
		}
	}
	return examples, nil
}

// ScrapeRepos processes repositories sequentially, logging and skipping
// ones that fail to list.
func (g *GitHubScraper) ScrapeRepos(ctx context.Context, repoURLs []string) ([]corpus.Example, error) {
	var all []corpus.Example
	for _, repoURL := range repoURLs {
		if ctx.Err() != nil {
			return all, ctx.Err()
		}
		g.log.Info("Processing repository", "repo", repoURL)
		examples, err := g.ScrapeRepo(ctx, repoURL)
		if err != nil {
			g.log.Error("Failed to scrape repository", "repo", repoURL, "error", err)
			continue
		}
		all = append(all, examples...)
	}
	return all, nil
}

func (g *GitHubScraper) listTree(ctx context.Context, owner, repo string) (*repoTree, error) {
	cacheKey := owner + "/" + repo
	if item := g.treeCache.Get(cacheKey); item != nil {
		return item.Value(), nil
	}

	var lastErr error
	for _, branch := range defaultBranches {
		url := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", g.apiBase, owner, repo, branch)
		body, err := g.fetcher.Get(ctx, url)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				lastErr = err
				continue
			}
			return nil, err
		}

		var tr treeResponse
		if err := json.Unmarshal(body, &tr); err != nil {
			return nil, fmt.Errorf("decode tree response: %w", err)
		}
		if tr.Truncated {
			g.log.Warn("Tree listing truncated, large repo", "owner", owner, "repo", repo)
		}

		tree := &repoTree{Branch: branch}
		for _, item := range tr.Tree {
			if item.Type == "blob" && strings.HasSuffix(item.Path, ".pp") {
				tree.Paths = append(tree.Paths, item.Path)
			}
		}
		g.treeCache.Set(cacheKey, tree, ttlcache.DefaultTTL)
		return tree, nil
	}
	return nil, lastErr
}

func (g *GitHubScraper) downloadManifest(ctx context.Context, owner, repo, branch, repoPath string) (corpus.Example, error) {
	url := fmt.Sprintf("%s/%s/%s/%s/%s", g.rawBase, owner, repo, branch, repoPath)
	body, err := g.fetcher.Get(ctx, url)
	if err != nil {
		g.log.Warn("Failed to download manifest", "path", repoPath, "error", err)
		return corpus.Example{}, nil
	}

	if _, err := g.store.SaveManifest(owner, repo, repoPath, body); err != nil {
		return corpus.Example{}, err
	}
	g.log.Debug("Downloaded manifest", "path", repoPath, "bytes", len(body))

	return corpus.Example{
		Code:        string(body),
		Description: manifestDescription(repo, repoPath),
		Source:      url,
		Score:       10, // .pp files are Puppet by construction
		Kind:        corpus.KindGitHubManifest,
	}, nil
}

// manifestDescription derives a readable description from the module repo
// name and manifest path, e.g. "Puppet apache module - init manifest".
func manifestDescription(repo, repoPath string) string {
	module := strings.TrimPrefix(repo, "puppetlabs-")
	module = strings.TrimPrefix(module, "puppet-")
	name := strings.TrimSuffix(path.Base(repoPath), ".pp")
	return fmt.Sprintf("Puppet %s module - %s manifest", module, name)
}
