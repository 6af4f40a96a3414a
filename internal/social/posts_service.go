// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package social

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftline/driftline/internal/entity"
)

// PostsService exposes publication, reactions, and removal of posts.
type PostsService struct {
	posts *entity.Access[*Post, ulid.ULID]
	users *entity.Access[*User, ulid.ULID]
}

func NewPostsService(posts *entity.Access[*Post, ulid.ULID], users *entity.Access[*User, ulid.ULID]) (*PostsService, error) {
	if posts == nil || users == nil {
		return nil, oops.Code("POSTS_SERVICE_INVALID").Errorf("post and user access are required")
	}
	return &PostsService{posts: posts, users: users}, nil
}

// Get fetches a post by key with the named relation sets. Absence is a
// nil post, not an error.
func (s *PostsService) Get(ctx context.Context, id ulid.ULID, relations ...string) (*Post, error) {
	return s.posts.Fetch(ctx, id, relations...)
}

// Create publishes p in one unit of work together with any unpersisted
// entities it references. The author (and parent, for replies) ride
// along: already-persisted ones are attached untouched, fresh ones are
// inserted first. Content rules are checked before anything is issued.
func (s *PostsService) Create(ctx context.Context, p *Post) error {
	if err := p.ValidateContent(); err != nil {
		return err
	}
	if p.Author == nil {
		return invalid("author", "must be set")
	}
	refs := []entity.Attachable{s.users.Ref(p.Author)}
	if p.Parent != nil {
		refs = append(refs, s.posts.Ref(p.Parent))
	}
	return entity.AttachInsert(ctx, s.posts.UnitOfWork(), s.posts.Ref(p), refs...)
}

// Like records u's like on p. Liking an already-liked post is a silent
// no-op; the decision is made against fresh copies of both entities.
func (s *PostsService) Like(ctx context.Context, p *Post, u *User) error {
	return entity.ApplyChangePair(ctx, s.posts, s.users, p, u,
		func(p *Post, u *User) { p.AddLike(u) },
		func(p *Post, u *User) bool { return !p.LikedBy(u) })
}

// Unlike withdraws u's like on p. Not having liked it is a silent no-op.
func (s *PostsService) Unlike(ctx context.Context, p *Post, u *User) error {
	return entity.ApplyChangePair(ctx, s.posts, s.users, p, u,
		func(p *Post, u *User) { p.RemoveLike(u) },
		func(p *Post, u *User) bool { return p.LikedBy(u) })
}

// Delete removes a post. Replies and likes go with it via the schema's
// cascades; deleting an absent post is a no-op.
func (s *PostsService) Delete(ctx context.Context, id ulid.ULID) error {
	return s.posts.Delete(ctx, id)
}
