package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/manifestlab/puppetmill/pkg/eval"
)

type EvalCmd struct{}

func NewEvalCmd() *EvalCmd {
	return &EvalCmd{}
}

func (c *EvalCmd) Command() *cobra.Command {
	var (
		flags   modelFlags
		outDir  string
		prompts []string
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the prompt suite against a model and report syntax quality",
		RunE: withRuntime(func(ctx context.Context, log *slog.Logger, dataDir string, cmd *cobra.Command, args []string) error {
			client, err := flags.client(cmd)
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = filepath.Join(dataDir, "evaluation")
			}

			ev, err := eval.New(eval.Config{
				Logger:    log,
				OutputDir: outDir,
				Prompts:   prompts,
			}, client)
			if err != nil {
				return err
			}

			summary, err := ev.Run(ctx)
			if err != nil {
				return err
			}

			eval.WriteDetails(os.Stdout, summary)
			eval.WriteReport(os.Stdout, []*eval.Summary{summary})
			return nil
		}),
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory for result JSON (default: <data-dir>/evaluation)")
	cmd.Flags().StringSliceVar(&prompts, "prompt", nil, "prompt to evaluate (repeatable, overrides the default suite)")

	return cmd
}
