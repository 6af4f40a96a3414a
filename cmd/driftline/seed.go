// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package main

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/driftline/driftline/internal/config"
	"github.com/driftline/driftline/internal/entity"
	"github.com/driftline/driftline/internal/logging"
	"github.com/driftline/driftline/internal/social"
	"github.com/driftline/driftline/internal/store"
)

const defaultSeedTimeout = 30 * time.Second

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the instance with a demo account",
		Long: `Creates a demo account with a welcome post. The command is
idempotent: re-running it leaves an already-seeded instance untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", defaultSeedTimeout, "timeout for database operations")

	return cmd
}

func runSeed(cmd *cobra.Command, timeout time.Duration) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("a database URL is required (config file or DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pg, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pg.Close()

	cmd.Println("Running migrations...")
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

	app, err := buildApp(pg.Pool(), cfg, logging.Setup("driftline", version, logging.Options{Format: cfg.Log.Format}))
	if err != nil {
		return err
	}

	demo, err := social.NewUser("driftline", "", "hello@driftline.example", cfg.Instance.DefaultAvatar)
	if err != nil {
		return err
	}
	demo.ChosenName = "Driftline"
	demo.Bio = "The instance account."

	welcome, err := social.NewPost(demo,
		"Welcome aboard. This is the first post on this instance.", "", "", nil)
	if err != nil {
		return err
	}

	// The unique username makes a second run collide instead of duplicating.
	if err := app.Posts.Create(ctx, welcome); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			cmd.Println("Instance already seeded, skipping")
			return nil
		}
		return err
	}

	cmd.Println("Seeded demo account", demo.Username)
	return nil
}
