// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"

	"github.com/driftline/driftline/internal/auth"
	"github.com/driftline/driftline/internal/config"
	"github.com/driftline/driftline/internal/entity"
	"github.com/driftline/driftline/internal/mail"
	"github.com/driftline/driftline/internal/social"
	"github.com/driftline/driftline/internal/store"
)

// App bundles the wired services an embedding surface (HTTP API, bot,
// test harness) drives.
type App struct {
	Auth   *auth.Service
	Users  *social.UsersService
	Posts  *social.PostsService
	Feed   *social.FeedService
	Tokens *auth.MemoryTokenStore
}

// buildApp wires the full service graph over db. The mail transport is
// the logging sender; swap in a real one where delivery matters.
func buildApp(db store.DB, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tx, err := store.NewTransactor(db)
	if err != nil {
		return nil, oops.Code("APP_WIRING_FAILED").Wrap(err)
	}

	users, err := entity.NewAccess(social.Users, tx)
	if err != nil {
		return nil, oops.Code("APP_WIRING_FAILED").Wrap(err)
	}
	posts, err := entity.NewAccess(social.Posts, tx)
	if err != nil {
		return nil, oops.Code("APP_WIRING_FAILED").Wrap(err)
	}
	sessions, err := entity.NewAccess(social.Sessions, tx)
	if err != nil {
		return nil, oops.Code("APP_WIRING_FAILED").Wrap(err)
	}

	loginMailer, err := mail.NewLoginMailer(mail.NewLogSender(logger), cfg.Instance.Name, cfg.Instance.BaseURL)
	if err != nil {
		return nil, oops.Code("APP_WIRING_FAILED").Wrap(err)
	}
	tokens := auth.NewMemoryTokenStore()

	authSvc, err := auth.NewServiceWithLogger(users, sessions, loginMailer, tokens, logger)
	if err != nil {
		return nil, oops.Code("APP_WIRING_FAILED").Wrap(err)
	}
	usersSvc, err := social.NewUsersService(users, posts)
	if err != nil {
		return nil, oops.Code("APP_WIRING_FAILED").Wrap(err)
	}
	postsSvc, err := social.NewPostsService(posts, users)
	if err != nil {
		return nil, oops.Code("APP_WIRING_FAILED").Wrap(err)
	}
	feedSvc, err := social.NewFeedService(posts)
	if err != nil {
		return nil, oops.Code("APP_WIRING_FAILED").Wrap(err)
	}

	return &App{
		Auth:   authSvc,
		Users:  usersSvc,
		Posts:  postsSvc,
		Feed:   feedSvc,
		Tokens: tokens,
	}, nil
}
