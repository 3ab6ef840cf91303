package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/spf13/cobra"

	"github.com/manifestlab/puppetmill/pkg/server"
)

type ServeCmd struct{}

func NewServeCmd() *ServeCmd {
	return &ServeCmd{}
}

func (c *ServeCmd) Command() *cobra.Command {
	var (
		flags  modelFlags
		listen string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve Puppet code generation over HTTP",
		RunE: withRuntime(func(ctx context.Context, log *slog.Logger, dataDir string, cmd *cobra.Command, args []string) error {
			client, err := flags.client(cmd)
			if err != nil {
				return err
			}

			srv, err := server.New(log, server.Config{Client: client})
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			listener, err := net.Listen("tcp", listen)
			if err != nil {
				return fmt.Errorf("failed to create listener: %w", err)
			}

			server.BuildInfo.WithLabelValues(version, commit, date).Set(1)
			log.Info("Server listening", "address", listener.Addr().String(), "model", client.Model())

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			for err := range srv.Start(ctx, cancel, listener) {
				if err != nil {
					return err
				}
			}
			return nil
		}),
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "address to listen on")

	return cmd
}
