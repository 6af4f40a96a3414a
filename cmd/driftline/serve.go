// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/driftline/driftline/internal/config"
	"github.com/driftline/driftline/internal/logging"
	"github.com/driftline/driftline/internal/observability"
	"github.com/driftline/driftline/internal/store"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the driftline core",
		Long: `Connect to PostgreSQL, apply pending migrations, wire the services
and serve observability endpoints until interrupted.`,
		RunE: runServe,
	}

	cmd.Flags().String("log.format", "", "log format: json or text")
	cmd.Flags().String("observability.addr", "", "metrics/health listen address")
	cmd.Flags().String("instance.name", "", "instance name used in outbound mail")
	cmd.Flags().String("instance.base_url", "", "base URL login links point at")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("a database URL is required (flag, config file or DATABASE_URL)")
	}

	logger := logging.Setup("driftline", version, logging.Options{Format: cfg.Log.Format})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pg.Close()

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		return err
	}
	if err := migrator.Close(); err != nil {
		return err
	}

	app, err := buildApp(pg.Pool(), cfg, logger)
	if err != nil {
		return err
	}
	// Startup self-check: one read through the whole data path.
	if _, err := app.Feed.Recent(ctx, 1); err != nil {
		return err
	}

	obs := observability.NewServer(cfg.Observability.Addr, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pg.Pool().Ping(pingCtx) == nil
	})
	obsErrs, err := obs.Start()
	if err != nil {
		return err
	}

	logger.Info("driftline core ready",
		"instance", cfg.Instance.Name,
		"observability", obs.Addr(),
	)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-obsErrs:
		if err != nil {
			return oops.Code("OBSERVABILITY_FAILED").Wrap(err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return obs.Stop(shutdownCtx)
}
