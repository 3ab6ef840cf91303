// Package cli implements the puppetmill command tree: collecting Puppet
// code, building training datasets, evaluating and serving models, and
// archiving dataset runs.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

const defaultDataDir = "data"

func Run() ExitCode {
	rootCmd := &cobra.Command{
		Use:   "puppetmill",
		Short: "Mine Puppet code from the web and turn it into model training datasets.",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cmd.Help()
			if err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "set debug logging level")

	var dataDir string
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", envWithDefault("PUPPETMILL_DATA_DIR", defaultDataDir), "directory for collected examples and datasets (env: PUPPETMILL_DATA_DIR)")

	var envFile string
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file before running")

	rootCmd.AddCommand(
		NewCollectCmd().Command(),
		NewDatasetCmd().Command(),
		NewEvalCmd().Command(),
		NewGenerateCmd().Command(),
		NewServeCmd().Command(),
		NewArchiveCmd().Command(),
		NewVersionCmd().Command(),
	)

	if err := rootCmd.Execute(); err != nil {
		return exitCodeError
	}

	return exitCodeSuccess
}

// withRuntime wires signal handling, env-file loading, the logger, and the
// data directory into a subcommand's RunE.
func withRuntime(f func(ctx context.Context, log *slog.Logger, dataDir string, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("failed to get verbose flag: %w", err)
		}
		log := newLogger(verbose)

		envFile, err := cmd.Root().PersistentFlags().GetString("env-file")
		if err != nil {
			return fmt.Errorf("failed to get env-file flag: %w", err)
		}
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load env file %s: %w", envFile, err)
			}
			log.Debug("Loaded environment file", "path", envFile)
		}

		dataDir, err := cmd.Root().PersistentFlags().GetString("data-dir")
		if err != nil {
			return fmt.Errorf("failed to get data-dir flag: %w", err)
		}

		err = f(ctx, log, dataDir, cmd, args)
		if err != nil {
			log.Error("failed to run command", "error", err)
			return err
		}

		return nil
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func envWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}
