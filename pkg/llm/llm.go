// Package llm provides the model backends used for generation and
// evaluation: the Anthropic API and a local Ollama server, behind one
// Client interface.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// DefaultSystemPrompt frames every generation request.
const DefaultSystemPrompt = "You are an expert in Puppet, the configuration management DSL. " +
	"Respond with valid Puppet code only, no explanations. " +
	"Use two-space indentation and align attribute arrows as puppet-lint expects."

// Client is a model backend capable of completing a prompt.
type Client interface {
	// Complete sends a prompt and returns the completion text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Model identifies the underlying model, for reports.
	Model() string
}

// Options selects and configures a backend. Temperature is a pointer so
// that an explicit 0 (greedy decoding) is distinguishable from unset.
type Options struct {
	Backend     string // "anthropic", "ollama", or "" for auto
	Model       string
	MaxTokens   int64
	Temperature *float64
	OllamaURL   string
}

const (
	BackendAnthropic = "anthropic"
	BackendOllama    = "ollama"

	defaultMaxTokens   = 300
	defaultTemperature = 0.7
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "stable-code:3b"
)

// New builds a client from options. With no explicit backend, Anthropic is
// chosen when ANTHROPIC_API_KEY is set, Ollama otherwise.
func New(opts Options) (Client, error) {
	backend := opts.Backend
	if backend == "" {
		if os.Getenv("ANTHROPIC_API_KEY") != "" {
			backend = BackendAnthropic
		} else {
			backend = BackendOllama
		}
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	temperature := defaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	switch backend {
	case BackendAnthropic:
		return NewAnthropicClient(opts.Model, opts.MaxTokens), nil
	case BackendOllama:
		url := opts.OllamaURL
		if url == "" {
			url = defaultOllamaURL
		}
		model := opts.Model
		if model == "" {
			model = defaultOllamaModel
		}
		return NewOllamaClient(url, model, opts.MaxTokens, temperature), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// FormatPrompt normalizes a task description into the comment-driven form
// the fine-tuned model was trained on.
func FormatPrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if !strings.HasPrefix(prompt, "#") {
		prompt = "# " + prompt
	}
	return prompt + "\n"
}

// StripEcho removes the prompt from a completion when the model echoes it
// back before the generated code.
func StripEcho(prompt, completion string) string {
	if idx := strings.Index(completion, prompt); idx >= 0 {
		return strings.TrimSpace(completion[idx+len(prompt):])
	}
	return strings.TrimSpace(completion)
}
