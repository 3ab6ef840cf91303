// Package corpus defines the collected-example record shared by every
// scraper and the directory-backed store the pipeline persists it in.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kinds of collected examples, by provenance.
const (
	KindRawFile        = "raw_file"
	KindHTMLBlock      = "html_block"
	KindGitHubManifest = "github_manifest"
	KindPDFBlock       = "pdf_block"
	KindCurated        = "curated"
)

// Example is a single collected piece of Puppet code with enough context to
// turn it into a training record later.
type Example struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Score       int    `json:"puppet_score"`
	Kind        string `json:"kind"`
}

// Summary describes one collection run.
type Summary struct {
	RunID            string         `json:"run_id"`
	Collection       string         `json:"collection"`
	CompletedAt      time.Time      `json:"completed_at"`
	TotalExamples    int            `json:"total_examples"`
	SourcesProcessed []string       `json:"sources_processed"`
	ExamplesBySource map[string]int `json:"examples_by_source"`
}

// NewSummary builds a summary for a set of examples gathered from the given
// sources.
func NewSummary(collection string, examples []Example, sources []string) Summary {
	bySource := make(map[string]int, len(sources))
	for _, ex := range examples {
		bySource[ex.Source]++
	}
	return Summary{
		RunID:            uuid.NewString(),
		Collection:       collection,
		CompletedAt:      time.Now().UTC(),
		TotalExamples:    len(examples),
		SourcesProcessed: sources,
		ExamplesBySource: bySource,
	}
}

// Store persists collections of examples as JSON files under a root
// directory. Raw manifest files downloaded from repositories live under
// <root>/repos/<owner>_<repo>/.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("store root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string { return s.root }

// Save writes a collection's examples to <root>/<collection>.json,
// atomically via a temp file rename.
func (s *Store) Save(collection string, examples []Example) error {
	return writeJSONAtomic(s.collectionPath(collection), examples)
}

// Load reads a collection back. A missing collection is an error; callers
// that tolerate absence should check os.IsNotExist.
func (s *Store) Load(collection string) ([]Example, error) {
	data, err := os.ReadFile(s.collectionPath(collection))
	if err != nil {
		return nil, err
	}
	var examples []Example
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", collection, err)
	}
	return examples, nil
}

// LoadAll reads every collection file in the store, in name order.
func (s *Store) LoadAll() ([]Example, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read store root: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if strings.HasSuffix(e.Name(), ".summary.json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var all []Example
	for _, name := range names {
		examples, err := s.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		all = append(all, examples...)
	}
	return all, nil
}

// WriteSummary writes the run summary next to the collection file.
func (s *Store) WriteSummary(sum Summary) error {
	path := filepath.Join(s.root, sum.Collection+".summary.json")
	return writeJSONAtomic(path, sum)
}

// RepoDir returns (creating it) the directory for raw manifests from a
// given repository.
func (s *Store) RepoDir(owner, repo string) (string, error) {
	dir := filepath.Join(s.root, "repos", owner+"_"+repo)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create repo dir: %w", err)
	}
	return dir, nil
}

// SaveManifest stores one raw .pp file under the repo dir. Path separators
// in the original repository path are flattened to underscores.
func (s *Store) SaveManifest(owner, repo, repoPath string, content []byte) (string, error) {
	dir, err := s.RepoDir(owner, repo)
	if err != nil {
		return "", err
	}
	name := strings.ReplaceAll(repoPath, "/", "_")
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write manifest %s: %w", name, err)
	}
	return path, nil
}

// ReposRoot is the directory holding downloaded raw manifests, which may
// not exist before the first github collection.
func (s *Store) ReposRoot() string {
	return filepath.Join(s.root, "repos")
}

func (s *Store) collectionPath(collection string) string {
	return filepath.Join(s.root, collection+".json")
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
