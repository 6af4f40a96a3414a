// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package auth

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// NewSecret mints a login secret together with per-session entropy and
// the digest that gets stored. The plaintext secret leaves the process
// only inside the login mail.
func NewSecret() (secret string, entropy uuid.UUID, hash []byte, err error) {
	s, err := uuid.NewRandom()
	if err != nil {
		return "", uuid.Nil, nil, oops.Code("AUTH_SECRET_FAILED").Wrap(err)
	}
	entropy, err = uuid.NewRandom()
	if err != nil {
		return "", uuid.Nil, nil, oops.Code("AUTH_SECRET_FAILED").Wrap(err)
	}
	secret = s.String()
	return secret, entropy, Digest(secret, entropy), nil
}

// Digest computes the stored form of a secret: SHA-256 over the secret
// concatenated with the session's entropy.
func Digest(secret string, entropy uuid.UUID) []byte {
	sum := sha256.Sum256([]byte(secret + entropy.String()))
	return sum[:]
}

// VerifySecret reports whether secret matches the stored digest. The
// comparison is constant-time.
func VerifySecret(secret string, entropy uuid.UUID, hash []byte) bool {
	return subtle.ConstantTimeCompare(Digest(secret, entropy), hash) == 1
}
