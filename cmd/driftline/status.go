// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/driftline/driftline/internal/config"
	"github.com/driftline/driftline/internal/store"
)

const statusTimeout = 5 * time.Second

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show database connectivity and schema version",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("a database URL is required (config file or DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()

	pg, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pg.Close()
	cmd.Println("database: reachable")

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // read-only version query

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	switch {
	case version == 0:
		cmd.Println("schema: no migrations applied")
	case dirty:
		cmd.Printf("schema: version %d (dirty)\n", version)
	default:
		cmd.Printf("schema: version %d\n", version)
	}
	return nil
}
