// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package social

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftline/driftline/internal/entity"
)

// UsersService exposes account-centric reads and profile changes.
type UsersService struct {
	users *entity.Access[*User, ulid.ULID]
	posts *entity.Access[*Post, ulid.ULID]
}

func NewUsersService(users *entity.Access[*User, ulid.ULID], posts *entity.Access[*Post, ulid.ULID]) (*UsersService, error) {
	if users == nil || posts == nil {
		return nil, oops.Code("USERS_SERVICE_INVALID").Errorf("user and post access are required")
	}
	return &UsersService{users: users, posts: posts}, nil
}

// Get fetches an account by key with the named relation sets. Absence is
// a nil account, not an error.
func (s *UsersService) Get(ctx context.Context, id ulid.ULID, relations ...string) (*User, error) {
	return s.users.Fetch(ctx, id, relations...)
}

// GetByUsername fetches an account by its unique username.
func (s *UsersService) GetByUsername(ctx context.Context, username string, relations ...string) (*User, error) {
	return s.users.FindWhere(ctx, "username = $1", []any{username}, relations...)
}

// RootIndex lists u's root posts, newest first, with author, reply and
// like sets attached.
func (s *UsersService) RootIndex(ctx context.Context, u *User) ([]*Post, error) {
	return s.posts.ListWhere(ctx, entity.Filter{
		Where:   "author_id = $1 AND parent_id IS NULL",
		Args:    []any{u.ID.String()},
		OrderBy: "id DESC",
	}, "author", "replies", "likes")
}

// ReplyIndex lists u's replies, newest first, each with the post it
// answers attached.
func (s *UsersService) ReplyIndex(ctx context.Context, u *User) ([]*Post, error) {
	return s.posts.ListWhere(ctx, entity.Filter{
		Where:   "author_id = $1 AND parent_id IS NOT NULL",
		Args:    []any{u.ID.String()},
		OrderBy: "id DESC",
	}, "author", "parent", "likes")
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// untouched; whitespace-only input clears a field.
type ProfileUpdate struct {
	ChosenName *string
	Bio        *string
	Picture    *string
	Banner     *string
}

// ApplyUpdate applies a profile edit to u. The change lands on a fresh
// copy of the account; an account deleted mid-edit surfaces as
// entity.ErrNotFound.
func (s *UsersService) ApplyUpdate(ctx context.Context, u *User, update ProfileUpdate) error {
	if update.ChosenName != nil && len(*update.ChosenName) > MaxChosenNameLen {
		return invalid("chosen_name", "is too long")
	}
	if update.Bio != nil && len(*update.Bio) > MaxBioLen {
		return invalid("bio", "is too long")
	}
	if update.Picture != nil && len(*update.Picture) > MaxURLLen {
		return invalid("picture", "must be a short URL")
	}
	if update.Banner != nil && len(*update.Banner) > MaxURLLen {
		return invalid("banner", "must be a short URL")
	}
	return s.users.ApplyChange(ctx, u, func(u *User) {
		if update.ChosenName != nil {
			u.ChosenName = normalizeOptional(*update.ChosenName)
		}
		if update.Bio != nil {
			u.Bio = normalizeOptional(*update.Bio)
		}
		if update.Picture != nil {
			u.Picture = normalizeOptional(*update.Picture)
		}
		if update.Banner != nil {
			u.Banner = normalizeOptional(*update.Banner)
		}
	}, nil)
}

// Follow makes follower follow followee. Already following, or following
// oneself, is a silent no-op.
func (s *UsersService) Follow(ctx context.Context, follower, followee *User) error {
	if follower.ID == followee.ID {
		return nil
	}
	return entity.ApplyChangePair(ctx, s.users, s.users, follower, followee,
		func(a, b *User) { a.Follow(b) },
		func(a, b *User) bool { return !a.Follows(b) })
}

// Unfollow withdraws a follow. Not following is a silent no-op.
func (s *UsersService) Unfollow(ctx context.Context, follower, followee *User) error {
	return entity.ApplyChangePair(ctx, s.users, s.users, follower, followee,
		func(a, b *User) { a.Unfollow(b) },
		func(a, b *User) bool { return a.Follows(b) })
}
