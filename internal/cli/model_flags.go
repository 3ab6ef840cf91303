package cli

import (
	"github.com/spf13/cobra"

	"github.com/manifestlab/puppetmill/pkg/llm"
)

// modelFlags holds the backend-selection flags shared by eval, generate,
// and serve.
type modelFlags struct {
	backend     string
	model       string
	maxTokens   int64
	temperature float64
	ollamaURL   string
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.backend, "backend", "", "model backend: anthropic or ollama (default: anthropic when ANTHROPIC_API_KEY is set, ollama otherwise)")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "model name (defaults per backend)")
	cmd.Flags().Int64Var(&f.maxTokens, "max-tokens", 0, "maximum tokens to generate")
	cmd.Flags().Float64Var(&f.temperature, "temperature", 0, "sampling temperature")
	cmd.Flags().StringVar(&f.ollamaURL, "ollama-url", "", "Ollama server base URL")
}

func (f *modelFlags) client(cmd *cobra.Command) (llm.Client, error) {
	opts := llm.Options{
		Backend:   f.backend,
		Model:     f.model,
		MaxTokens: f.maxTokens,
		OllamaURL: f.ollamaURL,
	}
	// Only an explicitly set temperature overrides the backend default, so
	// --temperature 0 requests greedy decoding rather than falling through.
	if cmd.Flags().Changed("temperature") {
		opts.Temperature = &f.temperature
	}
	return llm.New(opts)
}
