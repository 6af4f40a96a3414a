// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

//go:build integration

package social_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/driftline/internal/entity"
	"github.com/driftline/driftline/internal/social"
	"github.com/driftline/driftline/internal/store"
)

// Deleting a post with replies and likes removes the whole thread branch:
// the schema cascades replies and like rows along with the row itself.
func TestPostsService_Delete_CascadesRepliesAndLikes(t *testing.T) {
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
	posts, err := entity.NewAccess(social.Posts, tr)
	require.NoError(t, err)
	svc, err := social.NewPostsService(posts, users)
	require.NoError(t, err)

	author, err := social.NewUser(
		fmt.Sprintf("cascade_%s", strings.ToLower(ulid.Make().String())[20:]),
		"", "cascade@example.com", "https://example.com/a.png")
	require.NoError(t, err)

	root, err := social.NewPost(author, "root of the thread", "", "", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Create(ctx, root))

	reply, err := social.NewPost(author, "a reply", "", "", root)
	require.NoError(t, err)
	require.NoError(t, svc.Create(ctx, reply))
	require.NoError(t, svc.Like(ctx, root, author))

	require.NoError(t, svc.Delete(ctx, root.ID))

	gone, err := svc.Get(ctx, root.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	replyGone, err := svc.Get(ctx, reply.ID)
	require.NoError(t, err)
	assert.Nil(t, replyGone)
}
