// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package social

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftline/driftline/internal/entity"
	"github.com/driftline/driftline/internal/store"
)

// Keys are ULIDs stored as TEXT; pgx has no native codec for them.
func ulidArg(k ulid.ULID) any { return k.String() }

func ulidPtrArg(k *ulid.ULID) any {
	if k == nil {
		return nil
	}
	return k.String()
}

// Users describes the users table. Followers and Liked are inverse views
// owned elsewhere and load-only; Following is owned here and mirrored
// back on every successful change.
var Users = entity.MustRegister(&entity.Descriptor[*User, ulid.ULID]{
	Table: "users",
	Fields: []entity.Field{
		{Column: "id", Key: true},
		{Column: "username"},
		{Column: "chosen_name"},
		{Column: "phone"},
		{Column: "email"},
		{Column: "picture"},
		{Column: "banner"},
		{Column: "bio"},
	},
	ScanRow: scanUser,
	Args: func(u *User) []any {
		return []any{u.ID.String(), u.Username, u.ChosenName, u.Phone, u.Email, u.Picture, u.Banner, u.Bio}
	},
	KeyArg: ulidArg,
	Relations: []entity.Relation[*User]{
		{Name: "followers", Load: loadFollowers},
		{Name: "following", Load: loadFollowing, Save: saveFollowing},
		{Name: "liked", Load: loadLiked},
	},
	DefaultRelations: []string{"followers", "following", "liked"},
})

// Posts describes the posts table. The like set is owned by the post.
var Posts = entity.MustRegister(&entity.Descriptor[*Post, ulid.ULID]{
	Table: "posts",
	Fields: []entity.Field{
		{Column: "id", Key: true},
		{Column: "media_url"},
		{Column: "media_type"},
		{Column: "body"},
		{Column: "parent_id"},
		{Column: "author_id"},
	},
	ScanRow: scanPost,
	Args: func(p *Post) []any {
		return []any{p.ID.String(), p.MediaURL, p.MediaType, p.Body, ulidPtrArg(p.ParentID), p.AuthorID.String()}
	},
	KeyArg: ulidArg,
	Relations: []entity.Relation[*Post]{
		{Name: "author", Load: loadAuthor},
		{Name: "parent", Load: loadParent},
		{Name: "replies", Load: loadReplies},
		{Name: "likes", Load: loadLikes, Save: saveLikes},
	},
	DefaultRelations: []string{"author", "parent", "replies", "likes"},
})

// Sessions describes the sessions table. The owner relation resolves the
// full account, sets included, for bearer resolution.
var Sessions = entity.MustRegister(&entity.Descriptor[*Session, ulid.ULID]{
	Table: "sessions",
	Fields: []entity.Field{
		{Column: "id", Key: true},
		{Column: "request_id"},
		{Column: "secret_hash"},
		{Column: "secret_entropy"},
		{Column: "token"},
		{Column: "validated"},
		{Column: "user_id"},
	},
	ScanRow: scanSession,
	Args: func(s *Session) []any {
		return []any{
			s.ID.String(), s.RequestID.String(), s.SecretHash,
			s.SecretEntropy.String(), s.Token.String(), s.Validated, s.UserID.String(),
		}
	},
	KeyArg: ulidArg,
	Relations: []entity.Relation[*Session]{
		{Name: "owner", Load: loadOwner},
	},
})

const userColumns = "u.id, u.username, u.chosen_name, u.phone, u.email, u.picture, u.banner, u.bio"

const postColumns = "p.id, p.media_url, p.media_type, p.body, p.parent_id, p.author_id"

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var id string
	if err := row.Scan(&id, &u.Username, &u.ChosenName, &u.Phone, &u.Email, &u.Picture, &u.Banner, &u.Bio); err != nil {
		return nil, err
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return nil, oops.Code("SOCIAL_SCAN_FAILED").With("table", "users").Wrap(err)
	}
	u.ID = parsed
	return &u, nil
}

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	var id, authorID string
	var parentID *string
	if err := row.Scan(&id, &p.MediaURL, &p.MediaType, &p.Body, &parentID, &authorID); err != nil {
		return nil, err
	}
	errb := oops.Code("SOCIAL_SCAN_FAILED").With("table", "posts")
	parsed, err := ulid.Parse(id)
	if err != nil {
		return nil, errb.Wrap(err)
	}
	p.ID = parsed
	if p.AuthorID, err = ulid.Parse(authorID); err != nil {
		return nil, errb.Wrap(err)
	}
	if parentID != nil {
		parent, err := ulid.Parse(*parentID)
		if err != nil {
			return nil, errb.Wrap(err)
		}
		p.ParentID = &parent
	}
	return &p, nil
}

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	var id, requestID, entropy, token, userID string
	if err := row.Scan(&id, &requestID, &s.SecretHash, &entropy, &token, &s.Validated, &userID); err != nil {
		return nil, err
	}
	errb := oops.Code("SOCIAL_SCAN_FAILED").With("table", "sessions")
	var err error
	if s.ID, err = ulid.Parse(id); err != nil {
		return nil, errb.Wrap(err)
	}
	if s.RequestID, err = uuid.Parse(requestID); err != nil {
		return nil, errb.Wrap(err)
	}
	if s.SecretEntropy, err = uuid.Parse(entropy); err != nil {
		return nil, errb.Wrap(err)
	}
	if s.Token, err = uuid.Parse(token); err != nil {
		return nil, errb.Wrap(err)
	}
	if s.UserID, err = ulid.Parse(userID); err != nil {
		return nil, errb.Wrap(err)
	}
	return &s, nil
}

// queryUsers runs sql and scans every row as a persisted user.
func queryUsers(ctx context.Context, q store.Querier, sql string, args ...any) ([]*User, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		u.MarkPersisted()
		out = append(out, u)
	}
	return out, rows.Err()
}

func queryPosts(ctx context.Context, q store.Querier, sql string, args ...any) ([]*Post, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		p.MarkPersisted()
		out = append(out, p)
	}
	return out, rows.Err()
}

func loadFollowers(ctx context.Context, q store.Querier, u *User) error {
	followers, err := queryUsers(ctx, q,
		"SELECT "+userColumns+" FROM users u JOIN user_follows f ON f.follower_id = u.id WHERE f.followee_id = $1 ORDER BY u.id",
		u.ID.String())
	if err != nil {
		return oops.Code("SOCIAL_RELATION_FAILED").With("relation", "followers").Wrap(err)
	}
	u.Followers = followers
	return nil
}

func loadFollowing(ctx context.Context, q store.Querier, u *User) error {
	following, err := queryUsers(ctx, q,
		"SELECT "+userColumns+" FROM users u JOIN user_follows f ON f.followee_id = u.id WHERE f.follower_id = $1 ORDER BY u.id",
		u.ID.String())
	if err != nil {
		return oops.Code("SOCIAL_RELATION_FAILED").With("relation", "following").Wrap(err)
	}
	u.Following = following
	return nil
}

// saveFollowing mirrors the in-memory following set back to user_follows.
func saveFollowing(ctx context.Context, q store.Querier, u *User) error {
	errb := oops.Code("SOCIAL_RELATION_FAILED").With("relation", "following")
	if _, err := q.Exec(ctx, "DELETE FROM user_follows WHERE follower_id = $1", u.ID.String()); err != nil {
		return errb.Wrap(err)
	}
	for _, f := range u.Following {
		if _, err := q.Exec(ctx,
			"INSERT INTO user_follows (follower_id, followee_id) VALUES ($1, $2)",
			u.ID.String(), f.ID.String()); err != nil {
			return errb.Wrap(err)
		}
	}
	return nil
}

func loadLiked(ctx context.Context, q store.Querier, u *User) error {
	liked, err := queryPosts(ctx, q,
		"SELECT "+postColumns+" FROM posts p JOIN post_likes l ON l.post_id = p.id WHERE l.user_id = $1 ORDER BY p.id",
		u.ID.String())
	if err != nil {
		return oops.Code("SOCIAL_RELATION_FAILED").With("relation", "liked").Wrap(err)
	}
	u.Liked = liked
	return nil
}

func loadAuthor(ctx context.Context, q store.Querier, p *Post) error {
	row := q.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users u WHERE u.id = $1", p.AuthorID.String())
	author, err := scanUser(row)
	if err != nil {
		return oops.Code("SOCIAL_RELATION_FAILED").With("relation", "author").Wrap(err)
	}
	author.MarkPersisted()
	p.Author = author
	return nil
}

func loadParent(ctx context.Context, q store.Querier, p *Post) error {
	if p.ParentID == nil {
		return nil
	}
	row := q.QueryRow(ctx,
		"SELECT "+postColumns+" FROM posts p WHERE p.id = $1", p.ParentID.String())
	parent, err := scanPost(row)
	if err != nil {
		return oops.Code("SOCIAL_RELATION_FAILED").With("relation", "parent").Wrap(err)
	}
	parent.MarkPersisted()
	p.Parent = parent
	return nil
}

func loadReplies(ctx context.Context, q store.Querier, p *Post) error {
	replies, err := queryPosts(ctx, q,
		"SELECT "+postColumns+" FROM posts p WHERE p.parent_id = $1 ORDER BY p.id",
		p.ID.String())
	if err != nil {
		return oops.Code("SOCIAL_RELATION_FAILED").With("relation", "replies").Wrap(err)
	}
	p.Replies = replies
	return nil
}

func loadLikes(ctx context.Context, q store.Querier, p *Post) error {
	likes, err := queryUsers(ctx, q,
		"SELECT "+userColumns+" FROM users u JOIN post_likes l ON l.user_id = u.id WHERE l.post_id = $1 ORDER BY u.id",
		p.ID.String())
	if err != nil {
		return oops.Code("SOCIAL_RELATION_FAILED").With("relation", "likes").Wrap(err)
	}
	p.Likes = likes
	return nil
}

// saveLikes mirrors the in-memory like set back to post_likes.
func saveLikes(ctx context.Context, q store.Querier, p *Post) error {
	errb := oops.Code("SOCIAL_RELATION_FAILED").With("relation", "likes")
	if _, err := q.Exec(ctx, "DELETE FROM post_likes WHERE post_id = $1", p.ID.String()); err != nil {
		return errb.Wrap(err)
	}
	for _, u := range p.Likes {
		if _, err := q.Exec(ctx,
			"INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)",
			p.ID.String(), u.ID.String()); err != nil {
			return errb.Wrap(err)
		}
	}
	return nil
}

// loadOwner resolves the session's account with its relation sets, the
// shape a resolved bearer hands back to callers.
func loadOwner(ctx context.Context, q store.Querier, s *Session) error {
	row := q.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users u WHERE u.id = $1", s.UserID.String())
	owner, err := scanUser(row)
	if err != nil {
		return oops.Code("SOCIAL_RELATION_FAILED").With("relation", "owner").Wrap(err)
	}
	owner.MarkPersisted()
	for _, load := range []func(context.Context, store.Querier, *User) error{
		loadFollowers, loadFollowing, loadLiked,
	} {
		if err := load(ctx, q, owner); err != nil {
			return err
		}
	}
	s.Owner = owner
	return nil
}
