package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/EgorLis/infdot-upload/internal/app"
	"github.com/EgorLis/infdot-upload/internal/config"
	"github.com/EgorLis/infdot-upload/internal/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP upload server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			base := logger.Component(logger.New(cfg.LogLevel, cfg.AppEnv, os.Stdout), "app")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg, base)
			if err != nil {
				base.Error().Err(err).Msg("build failed")
				return err
			}
			if err := a.Run(ctx); err != nil {
				base.Error().Err(err).Msg("server stopped with error")
				return err
			}
			return nil
		},
	}
}
