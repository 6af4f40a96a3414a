// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package social

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftline/driftline/internal/entity"
)

// DefaultFeedLimit bounds a feed page when the caller passes no limit.
const DefaultFeedLimit = 50

// FeedService aggregates posts into timelines. ULID keys encode creation
// time, so ordering by key orders by recency.
type FeedService struct {
	posts *entity.Access[*Post, ulid.ULID]
}

func NewFeedService(posts *entity.Access[*Post, ulid.ULID]) (*FeedService, error) {
	if posts == nil {
		return nil, oops.Code("FEED_SERVICE_INVALID").Errorf("post access is required")
	}
	return &FeedService{posts: posts}, nil
}

// Recent lists the newest root posts across the whole instance.
func (s *FeedService) Recent(ctx context.Context, limit int) ([]*Post, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return s.posts.ListWhere(ctx, entity.Filter{
		Where:   "parent_id IS NULL",
		OrderBy: "id DESC",
		Limit:   limit,
	}, "author", "replies", "likes")
}

// Timeline lists the newest root posts authored by accounts u follows,
// including u's own.
func (s *FeedService) Timeline(ctx context.Context, u *User, limit int) ([]*Post, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return s.posts.ListWhere(ctx, entity.Filter{
		Where: "parent_id IS NULL AND (author_id = $1 OR author_id IN " +
			"(SELECT followee_id FROM user_follows WHERE follower_id = $1))",
		Args:    []any{u.ID.String()},
		OrderBy: "id DESC",
		Limit:   limit,
	}, "author", "replies", "likes")
}
