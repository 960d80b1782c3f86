package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"medrx_backend/internal/config"
	"medrx_backend/internal/database"
	transport "medrx_backend/internal/transport/http"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rx-server",
		Short: "Medical prescription API with patient push notifications",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (and the notification workers when NOTIFY_MODE=queue)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run only the notification workers consuming the prescription stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkers()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx := context.Background()
			db, err := database.Connect(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := database.NewMigrator(db, logger).Up(ctx)
			if err != nil {
				return err
			}
			logger.Info().Int("applied", n).Msg("migrations complete")
			return nil
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	server := transport.NewServer(":"+cfg.ServerPort, app.Router(), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	if app.workers != nil {
		g.Go(func() error {
			return app.workers.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runWorkers() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.QueueEnabled() {
		return fmt.Errorf("worker requires NOTIFY_MODE=%s", config.NotifyQueue)
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.workers.Run(ctx)
}
