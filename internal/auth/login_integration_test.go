// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

//go:build integration

package auth_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/driftline/internal/auth"
	"github.com/driftline/driftline/internal/entity"
	"github.com/driftline/driftline/internal/social"
	"github.com/driftline/driftline/internal/store"
)

// captureMailer records the last login mail instead of delivering it.
type captureMailer struct {
	last auth.LoginMail
}

func (c *captureMailer) SendLoginLink(_ context.Context, lm auth.LoginMail) error {
	c.last = lm
	return nil
}

// The whole protocol, end to end against a real database: start, redeem,
// resolve.
func TestLoginFlow_EndToEnd(t *testing.T) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pg, err := store.Connect(ctx, databaseURL)
	require.NoError(t, err)
	defer pg.Close()

	migrator, err := store.NewMigrator(databaseURL)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	tr, err := store.NewTransactor(pg.Pool())
	require.NoError(t, err)
	users, err := entity.NewAccess(social.Users, tr)
	require.NoError(t, err)
	sessions, err := entity.NewAccess(social.Sessions, tr)
	require.NoError(t, err)

	mailer := &captureMailer{}
	tokens := auth.NewMemoryTokenStore()
	svc, err := auth.NewService(users, sessions, mailer, tokens)
	require.NoError(t, err)

	// A throwaway account; email doubles as the login identifier.
	account, err := social.NewUser("login_e2e_"+uuid.NewString()[:8], "", uuid.NewString()+"@example.com", "")
	require.NoError(t, err)
	require.NoError(t, users.Insert(ctx, account))
	t.Cleanup(func() {
		_ = users.Delete(ctx, account.ID)
	})

	requestID, err := svc.StartLogin(ctx, account.Email)
	require.NoError(t, err)
	require.Equal(t, requestID, mailer.last.RequestID, "the mail carries the request identifier")
	secret := mailer.last.Secret
	require.NotEmpty(t, secret)

	// Wrong secret first: a plain no, and the session stays pending.
	ok, err := svc.CompleteLogin(ctx, requestID, "wrong-"+secret)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CompleteLogin(ctx, requestID, secret)
	require.NoError(t, err)
	require.True(t, ok)

	// The link is spent: the same request no longer resolves.
	ok, err = svc.CompleteLogin(ctx, requestID, secret)
	require.NoError(t, err)
	assert.False(t, ok)

	token := tokens.Latest()
	require.NotEqual(t, uuid.Nil, token)

	resolved, err := svc.ResolveBearer(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, account.ID, resolved.ID)
	assert.Empty(t, resolved.Following, "a fresh account follows nobody")

	unknown, err := svc.ResolveBearer(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, unknown)
}
