// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package social

import (
	"github.com/oklog/ulid/v2"

	"github.com/driftline/driftline/internal/entity"
)

// User is an account on the instance. Optional text fields use the empty
// string to mean unset; ParentID-style nullability is not needed here.
type User struct {
	entity.Tracked

	ID         ulid.ULID
	Username   string
	ChosenName string
	Phone      string
	Email      string
	Picture    string
	Banner     string
	Bio        string

	// Followers and Liked are inverse views owned by the other side.
	// Following is owned here and is mirrored back on save.
	Followers []*User
	Following []*User
	Liked     []*Post
}

// NewUser builds an unpersisted account. At least one of phone or email
// must be supplied so a login link can reach the user.
func NewUser(username, phone, email, picture string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if phone == "" && email == "" {
		return nil, invalid("contact", "requires a phone number or an email address")
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(picture) > MaxURLLen {
		return nil, invalid("picture", "must be a short URL")
	}
	return &User{
		ID:       ulid.Make(),
		Username: username,
		Phone:    phone,
		Email:    email,
		Picture:  picture,
	}, nil
}

func (u *User) Key() ulid.ULID { return u.ID }

// DisplayName prefers the chosen name and falls back to the username.
func (u *User) DisplayName() string {
	if u.ChosenName != "" {
		return u.ChosenName
	}
	return u.Username
}

// Follows reports whether u's owned following set contains v.
func (u *User) Follows(v *User) bool {
	for _, f := range u.Following {
		if f.ID == v.ID {
			return true
		}
	}
	return false
}

// Follow adds v to the owned following set. Self-follows and duplicates
// are ignored.
func (u *User) Follow(v *User) {
	if u.ID == v.ID || u.Follows(v) {
		return
	}
	u.Following = append(u.Following, v)
}

// Unfollow removes v from the owned following set if present.
func (u *User) Unfollow(v *User) {
	for i, f := range u.Following {
		if f.ID == v.ID {
			u.Following = append(u.Following[:i], u.Following[i+1:]...)
			return
		}
	}
}

// Validate checks all persistable fields. Constructors validate on the
// way in; this re-checks an entity mutated since construction.
func (u *User) Validate() error {
	if err := validateUsername(u.Username); err != nil {
		return err
	}
	if u.Phone == "" && u.Email == "" {
		return invalid("contact", "requires a phone number or an email address")
	}
	if err := validatePhone(u.Phone); err != nil {
		return err
	}
	if err := validateEmail(u.Email); err != nil {
		return err
	}
	if len(u.ChosenName) > MaxChosenNameLen {
		return invalid("chosen_name", "is too long")
	}
	if len(u.Bio) > MaxBioLen {
		return invalid("bio", "is too long")
	}
	if len(u.Picture) > MaxURLLen || len(u.Banner) > MaxURLLen {
		return invalid("picture", "must be a short URL")
	}
	return nil
}
