package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/manifestlab/puppetmill/pkg/collect"
	"github.com/manifestlab/puppetmill/pkg/corpus"
	"github.com/manifestlab/puppetmill/pkg/dataset"
)

type DatasetCmd struct{}

func NewDatasetCmd() *DatasetCmd {
	return &DatasetCmd{}
}

func (c *DatasetCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Build training datasets from collected examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newDatasetBuildCmd())

	return cmd
}

func newDatasetBuildCmd() *cobra.Command {
	var (
		outDir         string
		seed           int64
		includeCurated bool
		compress       bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Deduplicate, format, and split collected examples into train and test sets",
		RunE: withRuntime(func(ctx context.Context, log *slog.Logger, dataDir string, cmd *cobra.Command, args []string) error {
			store, err := corpus.NewStore(dataDir)
			if err != nil {
				return err
			}

			builder, err := dataset.NewBuilder(&dataset.BuilderConfig{Logger: log, Seed: seed})
			if err != nil {
				return err
			}

			examples, err := store.LoadAll()
			if err != nil {
				return err
			}
			builder.AddCorpus(examples)
			if includeCurated {
				builder.AddCorpus(collect.Curated())
			}
			if err := builder.AddManifestDir(store.ReposRoot()); err != nil {
				return err
			}

			ds := builder.Build()
			if len(ds.Train) == 0 {
				return fmt.Errorf("no training records produced; run collect first")
			}

			if outDir == "" {
				outDir = filepath.Join(dataDir, "dataset")
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			trainPath := filepath.Join(outDir, "puppet_train.json")
			testPath := filepath.Join(outDir, "puppet_test.json")
			if err := dataset.WriteJSON(trainPath, ds.Train); err != nil {
				return err
			}
			if err := dataset.WriteJSON(testPath, ds.Test); err != nil {
				return err
			}
			if compress {
				if err := dataset.WriteArchive(filepath.Join(outDir, "puppet_train.jsonl.zst"), ds.Train); err != nil {
					return err
				}
				if err := dataset.WriteArchive(filepath.Join(outDir, "puppet_test.jsonl.zst"), ds.Test); err != nil {
					return err
				}
			}

			log.Info("Dataset built", "train", len(ds.Train), "test", len(ds.Test), "dir", outDir)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: <data-dir>/dataset)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "shuffle seed for reproducible splits")
	cmd.Flags().BoolVar(&includeCurated, "curated", true, "include the built-in curated examples")
	cmd.Flags().BoolVar(&compress, "compress", false, "also write zstd-compressed JSONL archives")

	return cmd
}
