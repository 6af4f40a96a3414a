// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package social

import (
	"github.com/oklog/ulid/v2"

	"github.com/driftline/driftline/internal/entity"
)

// Post is a root publication or a reply. A post carries media, text or
// both; media always declares its MIME type.
type Post struct {
	entity.Tracked

	ID        ulid.ULID
	MediaURL  string
	MediaType string
	Body      string
	ParentID  *ulid.ULID
	AuthorID  ulid.ULID

	Author  *User
	Parent  *Post
	Replies []*Post
	// Likes is owned by the post and mirrored back on save.
	Likes []*User
}

// NewPost builds an unpersisted post by author. parent is nil for a root
// post. Content rules are enforced up front so a bad post never reaches
// the store.
func NewPost(author *User, body, mediaURL, mediaType string, parent *Post) (*Post, error) {
	p := &Post{
		ID:        ulid.Make(),
		MediaURL:  mediaURL,
		MediaType: mediaType,
		Body:      body,
		Author:    author,
	}
	if author != nil {
		p.AuthorID = author.ID
	}
	if parent != nil {
		id := parent.ID
		p.ParentID = &id
		p.Parent = parent
	}
	if err := p.ValidateContent(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Post) Key() ulid.ULID { return p.ID }

// IsReply reports whether the post answers another post.
func (p *Post) IsReply() bool { return p.ParentID != nil }

// LikedBy reports whether u appears in the post's like set.
func (p *Post) LikedBy(u *User) bool {
	for _, l := range p.Likes {
		if l.ID == u.ID {
			return true
		}
	}
	return false
}

// AddLike records u's like. Duplicates are ignored.
func (p *Post) AddLike(u *User) {
	if p.LikedBy(u) {
		return
	}
	p.Likes = append(p.Likes, u)
}

// RemoveLike withdraws u's like if present.
func (p *Post) RemoveLike(u *User) {
	for i, l := range p.Likes {
		if l.ID == u.ID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return
		}
	}
}

// ValidateContent enforces the content rules: declare media or text (or
// both), and declared media always names its type.
func (p *Post) ValidateContent() error {
	if p.Author == nil && p.AuthorID == (ulid.ULID{}) {
		return invalid("author", "must be set")
	}
	if p.MediaURL == "" && p.Body == "" {
		return invalid("content", "requires media or text")
	}
	if p.MediaURL != "" && p.MediaType == "" {
		return invalid("media_type", "must be declared for media posts")
	}
	if p.MediaURL == "" && p.MediaType != "" {
		return invalid("media_type", "must not be declared without media")
	}
	if len(p.MediaURL) > MaxURLLen {
		return invalid("media_url", "must be a short URL")
	}
	if len(p.MediaType) > MaxMediaTypeLen {
		return invalid("media_type", "is too long")
	}
	if len(p.Body) > MaxBodyLen {
		return invalid("body", "is too long")
	}
	return nil
}
