package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manifestlab/puppetmill/pkg/eval"
	"github.com/manifestlab/puppetmill/pkg/llm"
)

type GenerateCmd struct{}

func NewGenerateCmd() *GenerateCmd {
	return &GenerateCmd{}
}

// batchResult is one line of --batch output.
type batchResult struct {
	Prompt      string `json:"prompt"`
	Code        string `json:"code"`
	SyntaxScore int    `json:"syntax_score"`
	Error       string `json:"error,omitempty"`
}

func (c *GenerateCmd) Command() *cobra.Command {
	var (
		flags     modelFlags
		showScore bool
		batchFile string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate Puppet code for a task description",
		RunE: withRuntime(func(ctx context.Context, log *slog.Logger, dataDir string, cmd *cobra.Command, args []string) error {
			client, err := flags.client(cmd)
			if err != nil {
				return err
			}

			if batchFile != "" {
				return runBatch(ctx, log, client, batchFile, outPath)
			}
			if len(args) == 0 {
				return fmt.Errorf("a prompt argument or --batch file is required")
			}

			prompt := llm.FormatPrompt(strings.Join(args, " "))
			log.Debug("Generating", "model", client.Model(), "prompt", prompt)

			completion, err := client.Complete(ctx, llm.DefaultSystemPrompt, prompt)
			if err != nil {
				return err
			}
			code := llm.StripEcho(prompt, completion)

			fmt.Println(code)
			if showScore {
				fmt.Printf("\n# syntax score: %d/100\n", eval.SyntaxScore(code))
			}
			return nil
		}),
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&showScore, "score", false, "print the syntax score of the generated code")
	cmd.Flags().StringVar(&batchFile, "batch", "", "file with one prompt per line; results are written as JSON")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path for --batch results (default: stdout)")

	return cmd
}

func runBatch(ctx context.Context, log *slog.Logger, client llm.Client, batchFile, outPath string) error {
	f, err := os.Open(batchFile)
	if err != nil {
		return fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	var results []batchResult
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		task := strings.TrimSpace(sc.Text())
		if task == "" || strings.HasPrefix(task, "//") {
			continue
		}

		prompt := llm.FormatPrompt(task)
		log.Info("Generating", "model", client.Model(), "prompt", task)

		res := batchResult{Prompt: task}
		completion, err := client.Complete(ctx, llm.DefaultSystemPrompt, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error("Generation failed", "prompt", task, "error", err)
			res.Error = err.Error()
		} else {
			res.Code = llm.StripEcho(prompt, completion)
			res.SyntaxScore = eval.SyntaxScore(res.Code)
		}
		results = append(results, res)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read batch file: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no prompts in %s", batchFile)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if outPath == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	log.Info("Batch results written", "path", outPath, "prompts", len(results))
	return nil
}
