// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package social_test

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/driftline/driftline/internal/entity"
	"github.com/driftline/driftline/internal/social"
	"github.com/driftline/driftline/internal/store"
)

var (
	aliceID = ulid.MustParse("01HZN3XS000000000000000001")
	bobID   = ulid.MustParse("01HZN3XS000000000000000002")
	postID  = ulid.MustParse("01HZN3XS0000000000000000P1")
)

type fixture struct {
	mock     pgxmock.PgxPoolIface
	users    *entity.Access[*social.User, ulid.ULID]
	posts    *entity.Access[*social.Post, ulid.ULID]
	sessions *entity.Access[*social.Session, ulid.ULID]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	tr, err := store.NewTransactor(mock)
	require.NoError(t, err)

	users, err := entity.NewAccess(social.Users, tr)
	require.NoError(t, err)
	posts, err := entity.NewAccess(social.Posts, tr)
	require.NoError(t, err)
	sessions, err := entity.NewAccess(social.Sessions, tr)
	require.NoError(t, err)

	return &fixture{mock: mock, users: users, posts: posts, sessions: sessions}
}

var userColumns = []string{"id", "username", "chosen_name", "phone", "email", "picture", "banner", "bio"}

var postColumns = []string{"id", "media_url", "media_type", "body", "parent_id", "author_id"}

func userRow(id ulid.ULID, username string) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns).
		AddRow(id.String(), username, "", "", username+"@example.com", "", "", "")
}

func emptyUsers() *pgxmock.Rows { return pgxmock.NewRows(userColumns) }

func postRow(id, authorID ulid.ULID, body string) *pgxmock.Rows {
	return pgxmock.NewRows(postColumns).
		AddRow(id.String(), "", "", body, nil, authorID.String())
}

func emptyPosts() *pgxmock.Rows { return pgxmock.NewRows(postColumns) }

// expectUserFetch queues the keyed user select plus its three default
// relation loads, all empty.
func (f *fixture) expectUserFetch(id ulid.ULID, username string) {
	f.mock.ExpectQuery(`SELECT id, username, .+ FROM users WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(userRow(id, username))
	f.mock.ExpectQuery(`FROM users u JOIN user_follows f ON f\.follower_id = u\.id`).
		WithArgs(id.String()).
		WillReturnRows(emptyUsers())
	f.mock.ExpectQuery(`FROM users u JOIN user_follows f ON f\.followee_id = u\.id`).
		WithArgs(id.String()).
		WillReturnRows(emptyUsers())
	f.mock.ExpectQuery(`FROM posts p JOIN post_likes l ON l\.post_id = p\.id`).
		WithArgs(id.String()).
		WillReturnRows(emptyPosts())
}

// expectPostFetch queues the keyed post select plus its default relation
// loads: author, replies and likes (the fixture post has no parent).
func (f *fixture) expectPostFetch(id, authorID ulid.ULID, body string, likeRows *pgxmock.Rows) {
	f.mock.ExpectQuery(`SELECT id, media_url, .+ FROM posts WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(postRow(id, authorID, body))
	f.mock.ExpectQuery(`SELECT u\..+ FROM users u WHERE u\.id = \$1`).
		WithArgs(authorID.String()).
		WillReturnRows(userRow(authorID, "author"))
	f.mock.ExpectQuery(`FROM posts p WHERE p\.parent_id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(emptyPosts())
	f.mock.ExpectQuery(`FROM users u JOIN post_likes l ON l\.user_id = u\.id`).
		WithArgs(id.String()).
		WillReturnRows(likeRows)
}

// expectUserPersist queues the user update and the following-set mirror.
func (f *fixture) expectUserPersist(id ulid.ULID) {
	f.mock.ExpectExec(`UPDATE users SET`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectExec(`DELETE FROM user_follows WHERE follower_id = \$1`).
		WithArgs(id.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
}
