// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package social

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/driftline/driftline/internal/entity"
)

// SecretHashSize is the length of a stored login-secret digest
// (SHA-256). The schema carries a matching octet_length check.
const SecretHashSize = 32

// Session is one login attempt and, once validated, one live login. The
// secret itself is never stored; only its salted digest is. Validated is
// monotonic: it flips to true exactly once and never back.
type Session struct {
	entity.Tracked

	ID            ulid.ULID
	RequestID     uuid.UUID
	SecretHash    []byte
	SecretEntropy uuid.UUID
	Token         uuid.UUID
	Validated     bool
	UserID        ulid.ULID

	Owner *User
}

// NewSession builds a pending session for owner. The bearer token is
// minted up front but is only honored once Validated is set.
func NewSession(owner *User, requestID uuid.UUID, secretHash []byte, entropy uuid.UUID) (*Session, error) {
	if owner == nil {
		return nil, invalid("owner", "must be set")
	}
	if len(secretHash) != SecretHashSize {
		return nil, invalid("secret_hash", "must be a SHA-256 digest")
	}
	token, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:            ulid.Make(),
		RequestID:     requestID,
		SecretHash:    secretHash,
		SecretEntropy: entropy,
		Token:         token,
		UserID:        owner.ID,
		Owner:         owner,
	}, nil
}

func (s *Session) Key() ulid.ULID { return s.ID }
