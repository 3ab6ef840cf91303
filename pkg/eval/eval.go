package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/manifestlab/puppetmill/pkg/llm"
)

// DefaultPrompts cover the common Puppet use cases a tuned model should
// handle.
var DefaultPrompts = []string{
	"# Create a Puppet file resource",
	"# Define a Puppet class for Apache web server",
	"# Create a Puppet service resource",
	"# Install nginx package with configuration",
	"# Create a user account with home directory",
	"# Define a Puppet node for database server",
	"# Create an exec resource for system update",
	"# Define a custom resource type for application",
}

// passingScore is the syntax score above which an individual prompt counts
// as passed.
const passingScore = 50

// Result holds the outcome of a single prompt.
type Result struct {
	Prompt      string `json:"prompt"`
	Response    string `json:"response"`
	SyntaxScore int    `json:"syntax_score"`
	WordCount   int    `json:"length"`
	HasResource bool   `json:"has_puppet_resources"`
}

// Summary aggregates a full evaluation run over one model.
type Summary struct {
	Model              string   `json:"model_path"`
	Timestamp          string   `json:"timestamp"`
	TestCount          int      `json:"test_count"`
	AverageSyntaxScore float64  `json:"average_syntax_score"`
	ResourceRate       float64  `json:"puppet_resource_rate"`
	Passed             int      `json:"tests_passed"`
	Results            []Result `json:"individual_results"`
}

type Config struct {
	Logger *slog.Logger
	Clock  clockwork.Clock

	// OutputDir is where run results are persisted. Empty disables
	// persistence.
	OutputDir string

	// Prompts overrides DefaultPrompts when non-empty.
	Prompts []string
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if len(c.Prompts) == 0 {
		c.Prompts = DefaultPrompts
	}
	return nil
}

// Evaluator runs prompt suites against model backends.
type Evaluator struct {
	log    *slog.Logger
	cfg    Config
	client llm.Client
}

func New(cfg Config, client llm.Client) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	return &Evaluator{log: cfg.Logger, cfg: cfg, client: client}, nil
}

// Run evaluates every prompt in the suite and returns the aggregated
// summary. A failed completion scores zero rather than aborting the run.
func (e *Evaluator) Run(ctx context.Context) (*Summary, error) {
	results := make([]Result, 0, len(e.cfg.Prompts))
	totalScore := 0
	withResources := 0
	passed := 0

	for i, prompt := range e.cfg.Prompts {
		e.log.Info("Evaluating prompt", "index", i+1, "total", len(e.cfg.Prompts), "prompt", prompt)

		formatted := llm.FormatPrompt(prompt)
		response, err := e.client.Complete(ctx, llm.DefaultSystemPrompt, formatted)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.log.Error("Completion failed", "prompt", prompt, "error", err)
			response = ""
		}
		response = llm.StripEcho(formatted, response)

		score := SyntaxScore(response)
		hasResource := HasResource(response)
		totalScore += score
		if hasResource {
			withResources++
		}
		if score > passingScore {
			passed++
		}

		results = append(results, Result{
			Prompt:      prompt,
			Response:    response,
			SyntaxScore: score,
			WordCount:   len(strings.Fields(response)),
			HasResource: hasResource,
		})
		e.log.Info("Prompt scored", "syntaxScore", score, "hasResource", hasResource)
	}

	n := len(results)
	summary := &Summary{
		Model:              e.client.Model(),
		Timestamp:          e.cfg.Clock.Now().Format("2006-01-02T15:04:05"),
		TestCount:          n,
		AverageSyntaxScore: round2(float64(totalScore) / float64(n)),
		ResourceRate:       round2(float64(withResources) / float64(n) * 100),
		Passed:             passed,
		Results:            results,
	}

	e.log.Info("Evaluation complete",
		"model", summary.Model,
		"averageSyntaxScore", summary.AverageSyntaxScore,
		"resourceRate", summary.ResourceRate,
		"passed", fmt.Sprintf("%d/%d", passed, n))

	if e.cfg.OutputDir != "" {
		path, err := e.save(summary)
		if err != nil {
			return nil, fmt.Errorf("save results: %w", err)
		}
		e.log.Info("Results saved", "path", path)
	}

	return summary, nil
}

func (e *Evaluator) save(summary *Summary) (string, error) {
	if err := os.MkdirAll(e.cfg.OutputDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("evaluation_results_%s.json", e.cfg.Clock.Now().Format("20060102_150405"))
	path := filepath.Join(e.cfg.OutputDir, name)
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
