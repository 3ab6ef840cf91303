package collect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/manifestlab/puppetmill/pkg/corpus"
	"github.com/manifestlab/puppetmill/pkg/manifest"
)

const (
	minRawFileLen   = 20
	minBlockLen     = 10
	maxDescribeLen  = 500
	minProbeBodyLen = 50
)

// codeClassKeywords mark container elements that usually wrap code.
var codeClassKeywords = []string{"highlight", "code", "codehilite", "language", "puppet"}

// descriptionKeywords make a candidate description preferable.
var descriptionKeywords = []string{"example", "puppet", "code", "manifest", "class", "define"}

// wellKnownManifestPaths are probed per module repository, first hit wins.
var wellKnownManifestPaths = []string{
	"main/manifests/init.pp",
	"master/manifests/init.pp",
	"main/manifests/server.pp",
	"main/manifests/install.pp",
	"main/manifests/config.pp",
	"main/manifests/service.pp",
}

// WebScraper extracts Puppet code blocks from documentation pages and raw
// manifest URLs.
type WebScraper struct {
	log     *slog.Logger
	fetcher *Fetcher
	rawBase string
}

// WebScraperConfig holds configuration for creating a WebScraper.
type WebScraperConfig struct {
	Logger  *slog.Logger
	Fetcher *Fetcher

	// Optional configuration.
	RawBase string
}

func (c *WebScraperConfig) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Fetcher == nil {
		return errors.New("fetcher is required")
	}
	if c.RawBase == "" {
		c.RawBase = githubRawBase
	}
	return nil
}

func NewWebScraper(cfg *WebScraperConfig) (*WebScraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &WebScraper{log: cfg.Logger, fetcher: cfg.Fetcher, rawBase: cfg.RawBase}, nil
}

// ScrapePage fetches one URL and extracts Puppet examples from it. Raw .pp
// URLs are taken whole; HTML pages are parsed for code blocks.
func (w *WebScraper) ScrapePage(ctx context.Context, url string) ([]corpus.Example, error) {
	w.log.Debug("Fetching URL", "url", url)
	body, err := w.fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	if isRawManifestURL(url) {
		content := strings.TrimSpace(string(body))
		if len(content) <= minRawFileLen {
			return nil, nil
		}
		w.log.Debug("Found raw Puppet file", "url", url, "chars", len(content))
		return []corpus.Example{{
			Code:        content,
			Description: rawFileDescription(url),
			Source:      url,
			Score:       10,
			Kind:        corpus.KindRawFile,
		}}, nil
	}

	examples := extractFromHTML(body, url)
	w.log.Debug("Extracted code blocks", "url", url, "count", len(examples))
	return examples, nil
}

// ScrapeDocs processes the configured documentation URLs, then probes
// well-known manifest paths for each module repository. Results are
// deduplicated on code content.
func (w *WebScraper) ScrapeDocs(ctx context.Context, urls, moduleRepos []string) ([]corpus.Example, error) {
	var all []corpus.Example
	for _, url := range urls {
		if ctx.Err() != nil {
			return all, ctx.Err()
		}
		w.log.Info("Scraping page", "url", url)
		examples, err := w.ScrapePage(ctx, url)
		if err != nil {
			w.log.Error("Failed to scrape page", "url", url, "error", err)
			continue
		}
		all = append(all, examples...)
	}

	for _, repo := range moduleRepos {
		if ctx.Err() != nil {
			return all, ctx.Err()
		}
		ex, err := w.probeRepo(ctx, repo)
		if err != nil {
			w.log.Warn("No well-known manifest found", "repo", repo, "error", err)
			continue
		}
		all = append(all, ex)
	}

	return dedupeExamples(all), nil
}

// probeRepo tries well-known manifest paths for a repo, returning the first
// one that exists.
func (w *WebScraper) probeRepo(ctx context.Context, repo string) (corpus.Example, error) {
	w.log.Debug("Checking module repository", "repo", repo)
	for _, p := range wellKnownManifestPaths {
		url := fmt.Sprintf("%s/%s/%s", w.rawBase, repo, p)
		body, err := w.fetcher.Get(ctx, url)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return corpus.Example{}, err
		}
		content := strings.TrimSpace(string(body))
		if len(content) <= minProbeBodyLen {
			continue
		}

		module := strings.TrimPrefix(repo[strings.LastIndex(repo, "/")+1:], "puppetlabs-")
		name := strings.TrimSuffix(p[strings.LastIndex(p, "/")+1:], ".pp")
		w.log.Debug("Found manifest", "repo", repo, "manifest", name, "chars", len(content))
		return corpus.Example{
			Code:        content,
			Description: fmt.Sprintf("Puppet %s module - %s manifest", module, name),
			Source:      url,
			Score:       10,
			Kind:        corpus.KindGitHubManifest,
		}, nil
	}
	return corpus.Example{}, ErrNotFound
}

func isRawManifestURL(url string) bool {
	return strings.HasSuffix(url, ".pp") || strings.Contains(url, "raw.githubusercontent.com")
}

// rawFileDescription builds a description from the URL path, picking up
// the module name when the URL has raw-file shape (org/repo/branch/...).
func rawFileDescription(url string) string {
	parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
	filename := parts[len(parts)-1]
	if idx := strings.Index(url, "raw.githubusercontent.com/"); idx >= 0 {
		rest := strings.Split(url[idx+len("raw.githubusercontent.com/"):], "/")
		if len(rest) >= 2 {
			module := strings.TrimPrefix(rest[1], "puppetlabs-")
			return fmt.Sprintf("Puppet %s module - %s manifest", module, strings.TrimSuffix(filename, ".pp"))
		}
	}
	return "Puppet manifest " + filename
}

// extractFromHTML walks the document and pulls out code-bearing elements,
// scoring each candidate block with the shared Puppet heuristics.
func extractFromHTML(body []byte, source string) []corpus.Example {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var examples []corpus.Example
	var lastHeading, lastParagraph string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case isHeading(n.Data):
				if t := nodeText(n); t != "" && len(t) < maxDescribeLen {
					lastHeading = t
				}
			case n.Data == "p":
				if t := nodeText(n); t != "" && len(t) < maxDescribeLen {
					lastParagraph = t
				}
			case isCodeContainer(n):
				code := strings.TrimSpace(nodeText(n))
				if len(code) >= minBlockLen && manifest.IsLikely(code) {
					examples = append(examples, corpus.Example{
						Code:        code,
						Description: pickDescription(lastHeading, lastParagraph),
						Source:      source,
						Score:       manifest.Score(code),
						Kind:        corpus.KindHTMLBlock,
					})
					return // don't descend into nested code/pre
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return dedupeExamples(examples)
}

func isHeading(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func isCodeContainer(n *html.Node) bool {
	if n.Data == "pre" || n.Data == "code" {
		return true
	}
	if n.Data != "div" && n.Data != "span" {
		return false
	}
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		class := strings.ToLower(a.Val)
		for _, kw := range codeClassKeywords {
			if strings.Contains(class, kw) {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// pickDescription prefers the closest candidate mentioning Puppet-ish
// keywords, falling back to the paragraph then the heading.
func pickDescription(heading, paragraph string) string {
	for _, cand := range []string{paragraph, heading} {
		lower := strings.ToLower(cand)
		for _, kw := range descriptionKeywords {
			if strings.Contains(lower, kw) {
				return cand
			}
		}
	}
	if paragraph != "" {
		return paragraph
	}
	return heading
}

func dedupeExamples(examples []corpus.Example) []corpus.Example {
	seen := make(map[string]struct{}, len(examples))
	out := make([]corpus.Example, 0, len(examples))
	for _, ex := range examples {
		if _, ok := seen[ex.Code]; ok {
			continue
		}
		seen[ex.Code] = struct{}{}
		out = append(out, ex)
	}
	return out
}
