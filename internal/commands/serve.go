package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/raysh454/safeecho/internal/app"
	"github.com/raysh454/safeecho/internal/logging"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API, alert feed and dashboard",
		Flags: []cli.Flag{
			configFlag(),
			modelFlag(),
			logLevelFlag(),
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "Listen address (overrides server.listen)",
			},
			&cli.StringFlag{
				Name:  "static-dir",
				Usage: "Directory with the dashboard to serve at / (overrides server.static_dir)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // stderr sync fails on some terminals

			if l := c.String("listen"); l != "" {
				cfg.Server.ListenAddr = l
			}
			if d := c.String("static-dir"); d != "" {
				cfg.Server.StaticDir = d
			}

			a, err := app.NewApplication(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.Run(ctx); err != nil {
				logger.Error("server stopped", logging.Err(err))
				return err
			}
			return nil
		},
	}
}
