package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/sq3/hausfinanzierungs-dashboard/internal/server"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/constants"
	"go.uber.org/zap"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var serverConfigLocation, address string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the financing API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srvConfig, err := server.LoadConfig(serverConfigLocation)
			if err != nil {
				return fmt.Errorf("failed to load server configuration at %s: %w", serverConfigLocation, err)
			}
			if address != "" {
				srvConfig.Address = address
			}

			logger, err := initializeLogger(srvConfig.Logging, root.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			resultCache := server.NewCache(ctx, srvConfig, logger)
			if closer, ok := resultCache.(io.Closer); ok {
				defer func() {
					if err := closer.Close(); err != nil {
						logger.Warn("failed to close result cache", zap.String("op", "cmd.serve"), zap.Error(err))
					}
				}()
			}

			handler := server.NewHandler(logger, server.Options{
				MaxUploadSize: srvConfig.UploadSizeBytes(),
				Version:       Version,
				Cache:         resultCache,
				CacheTTL:      srvConfig.CacheTTLDuration(),
			})

			if err := server.Run(ctx, logger, srvConfig.Address, handler); err != nil {
				logger.Error("server stopped", zap.String("op", "cmd.serve"), zap.Error(err))
				return err
			}
			return nil
		},
	}

	serveCmd.Flags().StringVar(&serverConfigLocation, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	serveCmd.Flags().StringVar(&address, "address", "", "listen address override")
	return serveCmd
}
