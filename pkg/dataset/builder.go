// Package dataset assembles collected Puppet examples into instruction-style
// training datasets: deduplicated, shuffled, comment-driven text records with
// a held-out test split.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/manifestlab/puppetmill/pkg/corpus"
	"github.com/manifestlab/puppetmill/pkg/manifest"
)

const (
	defaultMinCodeLen   = 30
	defaultMinWebScore  = 3
	defaultTestDivisor  = 10
	defaultMaxTestCount = 50
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Record is one training example in the comment-driven format the code
// model is fine-tuned on.
type Record struct {
	Text string `json:"text"`
}

// pair is an instruction/output example before formatting.
type pair struct {
	instruction string
	output      string
	source      string
}

// Builder accumulates examples from corpora and manifest directories and
// produces the final dataset.
type Builder struct {
	log   *slog.Logger
	cfg   *BuilderConfig
	pairs []pair
}

// BuilderConfig holds configuration for creating a Builder.
type BuilderConfig struct {
	Logger *slog.Logger

	// Optional configuration.
	Seed         int64
	MinCodeLen   int
	MinWebScore  int
	MaxTestCount int
}

func (c *BuilderConfig) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.MinCodeLen == 0 {
		c.MinCodeLen = defaultMinCodeLen
	}
	if c.MinWebScore == 0 {
		c.MinWebScore = defaultMinWebScore
	}
	if c.MaxTestCount == 0 {
		c.MaxTestCount = defaultMaxTestCount
	}
	return nil
}

func NewBuilder(cfg *BuilderConfig) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{log: cfg.Logger, cfg: cfg}, nil
}

// AddCorpus folds collected examples in, applying the per-kind quality
// filters: everything needs a minimum code length, and HTML blocks
// additionally need a minimum Puppet score.
func (b *Builder) AddCorpus(examples []corpus.Example) {
	kept := 0
	for _, ex := range examples {
		if len(ex.Code) < b.cfg.MinCodeLen {
			continue
		}
		if ex.Kind == corpus.KindHTMLBlock && ex.Score < b.cfg.MinWebScore {
			continue
		}

		desc := ex.Description
		if manifest.WeakDescription(desc) {
			desc = manifest.Describe(ex.Code)
		}
		b.pairs = append(b.pairs, pair{
			instruction: desc,
			output:      manifest.Clean(ex.Code),
			source:      ex.Source,
		})
		kept++
	}
	b.log.Info("Added corpus examples", "total", len(examples), "kept", kept)
}

// AddManifestDir walks a directory of raw .pp files (as written by the
// GitHub scraper) and folds each manifest in. A missing directory is not an
// error: the repos layout only exists after a github collection has run.
func (b *Builder) AddManifestDir(dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		b.log.Debug("Manifest directory does not exist, skipping", "dir", dir)
		return nil
	}
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".pp") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read manifest %s: %w", path, err)
		}
		code := string(data)
		if len(code) < b.cfg.MinCodeLen {
			return nil
		}
		b.pairs = append(b.pairs, pair{
			instruction: manifest.Describe(code),
			output:      manifest.Clean(code),
			source:      path,
		})
		count++
		return nil
	})
	if err != nil {
		return err
	}
	b.log.Info("Added manifest directory", "dir", dir, "manifests", count)
	return nil
}

// Dataset is the built result: a shuffled training set and a held-out test
// set of formatted records.
type Dataset struct {
	Train []Record
	Test  []Record
}

// Build deduplicates on whitespace-normalized code, shuffles with the
// configured seed, formats records, and splits off the test set.
func (b *Builder) Build() Dataset {
	seen := make(map[string]struct{}, len(b.pairs))
	unique := make([]pair, 0, len(b.pairs))
	for _, p := range b.pairs {
		key := whitespaceRe.ReplaceAllString(p.output, " ")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}

	rng := rand.New(rand.NewSource(b.cfg.Seed))
	rng.Shuffle(len(unique), func(i, j int) {
		unique[i], unique[j] = unique[j], unique[i]
	})

	records := make([]Record, 0, len(unique))
	for _, p := range unique {
		records = append(records, Record{Text: fmt.Sprintf("# %s\n%s", p.instruction, p.output)})
	}

	testSize := len(records) / defaultTestDivisor
	if testSize > b.cfg.MaxTestCount {
		testSize = b.cfg.MaxTestCount
	}

	b.log.Info("Built dataset", "records", len(records), "train", len(records)-testSize, "test", testSize, "duplicatesDropped", len(b.pairs)-len(unique))
	return Dataset{
		Train: records[testSize:],
		Test:  records[:testSize],
	}
}
