package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/manifestlab/puppetmill/pkg/collect"
	"github.com/manifestlab/puppetmill/pkg/corpus"
)

type CollectCmd struct{}

func NewCollectCmd() *CollectCmd {
	return &CollectCmd{}
}

func (c *CollectCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect Puppet code examples from GitHub, documentation pages, and PDFs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newCollectGitHubCmd(),
		newCollectWebCmd(),
		newCollectPDFCmd(),
		newCollectCuratedCmd(),
	)

	return cmd
}

func newCollectGitHubCmd() *cobra.Command {
	var (
		sourcesPath string
		repos       []string
		token       string
		rateLimit   float64
	)

	cmd := &cobra.Command{
		Use:   "github",
		Short: "Mine .pp manifests from GitHub repositories",
		RunE: withRuntime(func(ctx context.Context, log *slog.Logger, dataDir string, cmd *cobra.Command, args []string) error {
			sources, err := LoadSources(sourcesPath)
			if err != nil {
				return err
			}
			if len(repos) > 0 {
				sources.Repos = repos
			}
			if len(sources.Repos) == 0 {
				return fmt.Errorf("no repositories to collect from")
			}
			if token == "" {
				token = os.Getenv("GITHUB_TOKEN")
			}

			store, err := corpus.NewStore(dataDir)
			if err != nil {
				return err
			}
			fetcher, err := collect.NewFetcher(&collect.FetcherConfig{Logger: log, Rate: rate.Limit(rateLimit)})
			if err != nil {
				return err
			}
			scraper, err := collect.NewGitHubScraper(&collect.GitHubScraperConfig{
				Logger:  log,
				Fetcher: fetcher,
				Store:   store,
				Token:   token,
			})
			if err != nil {
				return err
			}

			examples, err := scraper.ScrapeRepos(ctx, sources.Repos)
			if err != nil {
				return err
			}
			return saveCollection(log, store, "github", examples, sources.Repos)
		}),
	}

	cmd.Flags().StringVar(&sourcesPath, "sources", "", "YAML sources file (defaults to the built-in source list)")
	cmd.Flags().StringSliceVar(&repos, "repo", nil, "repository to mine, as URL or owner/name (repeatable, overrides sources)")
	cmd.Flags().StringVar(&token, "token", "", "GitHub API token (env: GITHUB_TOKEN)")
	cmd.Flags().Float64Var(&rateLimit, "rate", 0, "request rate limit in requests per second")

	return cmd
}

func newCollectWebCmd() *cobra.Command {
	var (
		sourcesPath string
		urls        []string
		rateLimit   float64
	)

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Extract Puppet code blocks from documentation pages",
		RunE: withRuntime(func(ctx context.Context, log *slog.Logger, dataDir string, cmd *cobra.Command, args []string) error {
			sources, err := LoadSources(sourcesPath)
			if err != nil {
				return err
			}
			if len(urls) > 0 {
				sources.DocURLs = urls
				sources.ModuleRepos = nil
			}
			if len(sources.DocURLs) == 0 && len(sources.ModuleRepos) == 0 {
				return fmt.Errorf("no URLs to collect from")
			}

			store, err := corpus.NewStore(dataDir)
			if err != nil {
				return err
			}
			fetcher, err := collect.NewFetcher(&collect.FetcherConfig{Logger: log, Rate: rate.Limit(rateLimit)})
			if err != nil {
				return err
			}
			scraper, err := collect.NewWebScraper(&collect.WebScraperConfig{
				Logger:  log,
				Fetcher: fetcher,
			})
			if err != nil {
				return err
			}

			examples, err := scraper.ScrapeDocs(ctx, sources.DocURLs, sources.ModuleRepos)
			if err != nil {
				return err
			}
			processed := append(append([]string{}, sources.DocURLs...), sources.ModuleRepos...)
			return saveCollection(log, store, "web", examples, processed)
		}),
	}

	cmd.Flags().StringVar(&sourcesPath, "sources", "", "YAML sources file (defaults to the built-in source list)")
	cmd.Flags().StringSliceVar(&urls, "url", nil, "documentation page to scan (repeatable, overrides sources)")
	cmd.Flags().Float64Var(&rateLimit, "rate", 0, "request rate limit in requests per second")

	return cmd
}

func newCollectPDFCmd() *cobra.Command {
	var sourcesPath string

	cmd := &cobra.Command{
		Use:   "pdf [file...]",
		Short: "Extract Puppet code blocks from PDF files",
		RunE: withRuntime(func(ctx context.Context, log *slog.Logger, dataDir string, cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				sources, err := LoadSources(sourcesPath)
				if err != nil {
					return err
				}
				paths = sources.PDFs
			}
			if len(paths) == 0 {
				return fmt.Errorf("no PDF files to extract from")
			}

			store, err := corpus.NewStore(dataDir)
			if err != nil {
				return err
			}
			extractor, err := collect.NewPDFExtractor(log)
			if err != nil {
				return err
			}

			var examples []corpus.Example
			for _, path := range paths {
				got, err := extractor.ExtractFile(path)
				if err != nil {
					log.Error("Failed to extract PDF, skipping", "path", path, "error", err)
					continue
				}
				examples = append(examples, got...)
			}
			return saveCollection(log, store, "pdf", examples, paths)
		}),
	}

	cmd.Flags().StringVar(&sourcesPath, "sources", "", "YAML sources file listing PDFs (used when no files are given)")

	return cmd
}

func newCollectCuratedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "curated",
		Short: "Write the built-in curated example set into the data directory",
		RunE: withRuntime(func(ctx context.Context, log *slog.Logger, dataDir string, cmd *cobra.Command, args []string) error {
			store, err := corpus.NewStore(dataDir)
			if err != nil {
				return err
			}
			return saveCollection(log, store, "curated", collect.Curated(), []string{"builtin"})
		}),
	}
}

func saveCollection(log *slog.Logger, store *corpus.Store, collection string, examples []corpus.Example, sources []string) error {
	if err := store.Save(collection, examples); err != nil {
		return fmt.Errorf("save collection %s: %w", collection, err)
	}
	sum := corpus.NewSummary(collection, examples, sources)
	if err := store.WriteSummary(sum); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	log.Info("Collection saved", "collection", collection, "examples", len(examples), "sources", len(sources), "runID", sum.RunID)
	return nil
}
