package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/manifestlab/puppetmill/pkg/archive"
)

type ArchiveCmd struct{}

func NewArchiveCmd() *ArchiveCmd {
	return &ArchiveCmd{}
}

func (c *ArchiveCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Push dataset runs to S3 and pull them back",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newArchivePushCmd(),
		newArchivePullCmd(),
	)

	return cmd
}

func bucketFlag(cmd *cobra.Command, bucket, region *string) {
	cmd.Flags().StringVarP(bucket, "bucket", "b", os.Getenv("PUPPETMILL_S3_BUCKET"), "S3 bucket (env: PUPPETMILL_S3_BUCKET)")
	cmd.Flags().StringVar(region, "region", "us-east-1", "AWS region")
}

func newArchivePushCmd() *cobra.Command {
	var bucket, region string

	cmd := &cobra.Command{
		Use:   "push [dir]",
		Short: "Upload a dataset directory as a new timestamped run",
		Args:  cobra.MaximumNArgs(1),
		RunE: withRuntime(func(ctx context.Context, log *slog.Logger, dataDir string, cmd *cobra.Command, args []string) error {
			dir := filepath.Join(dataDir, "dataset")
			if len(args) == 1 {
				dir = args[0]
			}

			a, err := archive.New(ctx, archive.Config{
				Logger: log,
				Bucket: bucket,
				Region: region,
			})
			if err != nil {
				return err
			}

			prefix, err := a.PushDir(ctx, dir)
			if err != nil {
				return err
			}
			fmt.Println(prefix)
			return nil
		}),
	}

	bucketFlag(cmd, &bucket, &region)

	return cmd
}

func newArchivePullCmd() *cobra.Command {
	var (
		bucket, region string
		prefix         string
		anonymous      bool
	)

	cmd := &cobra.Command{
		Use:   "pull [dir]",
		Short: "Download a dataset run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withRuntime(func(ctx context.Context, log *slog.Logger, dataDir string, cmd *cobra.Command, args []string) error {
			dir := filepath.Join(dataDir, "dataset")
			if len(args) == 1 {
				dir = args[0]
			}

			a, err := archive.New(ctx, archive.Config{
				Logger:    log,
				Bucket:    bucket,
				Region:    region,
				Anonymous: anonymous,
			})
			if err != nil {
				return err
			}

			pulled, err := a.Pull(ctx, prefix, dir)
			if err != nil {
				return err
			}
			fmt.Println(pulled)
			return nil
		}),
	}

	bucketFlag(cmd, &bucket, &region)
	cmd.Flags().StringVarP(&prefix, "run", "r", "", "run prefix to pull (default: latest)")
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "use unsigned requests for public buckets")

	return cmd
}
