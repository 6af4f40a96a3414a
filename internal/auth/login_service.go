// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/driftline/driftline/internal/social"
	"github.com/driftline/driftline/pkg/errutil"
)

// Lookup predicates. The pending and validated forms never overlap, so a
// request identifier stops resolving the moment its session validates.
const (
	userByIdentifier   = "email = $1 OR phone = $1"
	pendingByRequestID = "request_id = $1 AND NOT validated"
	validatedByToken   = "token = $1 AND validated"
)

// UserAccess is the slice of the entity layer the login flow reads
// accounts through.
type UserAccess interface {
	FindWhere(ctx context.Context, where string, args []any, relations ...string) (*social.User, error)
}

// SessionAccess is the slice of the entity layer the login flow drives
// sessions through.
type SessionAccess interface {
	FindWhere(ctx context.Context, where string, args []any, relations ...string) (*social.Session, error)
	Insert(ctx context.Context, s *social.Session) error
	ApplyChange(ctx context.Context, current *social.Session, mutate func(*social.Session), precondition func(*social.Session) bool) error
}

// LoginMail is what the mail transport needs to deliver a login link.
// Secret is the only copy of the plaintext secret.
type LoginMail struct {
	Identifier string
	Username   string
	RequestID  uuid.UUID
	Secret     string
}

// Mailer delivers login links. Delivery is best effort: a failed send is
// logged, never surfaced to the caller, so the response shape stays the
// same for known and unknown identifiers.
type Mailer interface {
	SendLoginLink(ctx context.Context, mail LoginMail) error
}

// TokenStore hands a validated session's bearer token to wherever the
// client keeps it.
type TokenStore interface {
	Save(ctx context.Context, token uuid.UUID) error
}

// Service implements passwordless login: a mailed one-time secret
// validates a pending session, whose bearer token then resolves back to
// the account.
type Service struct {
	users    UserAccess
	sessions SessionAccess
	mailer   Mailer
	tokens   TokenStore
	logger   *slog.Logger
}

// NewService wires the login flow. All collaborators are required.
func NewService(users UserAccess, sessions SessionAccess, mailer Mailer, tokens TokenStore) (*Service, error) {
	return NewServiceWithLogger(users, sessions, mailer, tokens, slog.Default())
}

// NewServiceWithLogger is NewService with an explicit logger.
func NewServiceWithLogger(users UserAccess, sessions SessionAccess, mailer Mailer, tokens TokenStore, logger *slog.Logger) (*Service, error) {
	if users == nil || sessions == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("user and session access are required")
	}
	if mailer == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("mailer is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("token store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, sessions: sessions, mailer: mailer, tokens: tokens, logger: logger}, nil
}

// StartLogin begins a login for the account reachable at identifier (an
// email address or phone number). A request identifier comes back either
// way; when the identifier matches no account, nothing else happens, so
// the caller cannot probe which identifiers exist. The two paths do
// different amounts of work, so timing can still tell them apart.
func (s *Service) StartLogin(ctx context.Context, identifier string) (uuid.UUID, error) {
	requestID, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, oops.Code("AUTH_START_FAILED").Wrap(err)
	}

	user, err := s.users.FindWhere(ctx, userByIdentifier, []any{identifier})
	if err != nil {
		return uuid.Nil, oops.Code("AUTH_START_FAILED").Wrap(err)
	}
	if user == nil {
		recordLogin("start", "no_match")
		return requestID, nil
	}

	secret, entropy, hash, err := NewSecret()
	if err != nil {
		return uuid.Nil, oops.Code("AUTH_START_FAILED").Wrap(err)
	}
	session, err := social.NewSession(user, requestID, hash, entropy)
	if err != nil {
		return uuid.Nil, oops.Code("AUTH_START_FAILED").Wrap(err)
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return uuid.Nil, oops.Code("AUTH_START_FAILED").Wrap(err)
	}

	if err := s.mailer.SendLoginLink(ctx, LoginMail{
		Identifier: identifier,
		Username:   user.Username,
		RequestID:  requestID,
		Secret:     secret,
	}); err != nil {
		errutil.LogError(ctx, s.logger, "login mail dispatch failed", err)
	}

	recordLogin("start", "pending")
	return requestID, nil
}

// CompleteLogin redeems the mailed secret against its pending session.
// It answers only yes or no: a missing or already-validated session and
// a wrong secret are the same false. On success the session validates
// (the flag is monotonic; a concurrent redeem of the same link also
// reports success) and the bearer token is handed to the token store.
func (s *Service) CompleteLogin(ctx context.Context, requestID uuid.UUID, secret string) (bool, error) {
	session, err := s.sessions.FindWhere(ctx, pendingByRequestID, []any{requestID.String()})
	if err != nil {
		return false, oops.Code("AUTH_COMPLETE_FAILED").Wrap(err)
	}
	if session == nil {
		recordLogin("complete", "rejected")
		return false, nil
	}
	if !VerifySecret(secret, session.SecretEntropy, session.SecretHash) {
		recordLogin("complete", "rejected")
		return false, nil
	}

	err = s.sessions.ApplyChange(ctx, session,
		func(sess *social.Session) { sess.Validated = true },
		func(sess *social.Session) bool { return !sess.Validated })
	if err != nil {
		return false, oops.Code("AUTH_COMPLETE_FAILED").Wrap(err)
	}

	if err := s.tokens.Save(ctx, session.Token); err != nil {
		errutil.LogError(ctx, s.logger, "bearer token handoff failed", err)
	}

	recordLogin("complete", "validated")
	return true, nil
}

// ResolveBearer maps a bearer token to the owning account, relation sets
// attached. Unknown and not-yet-validated tokens resolve to nil.
func (s *Service) ResolveBearer(ctx context.Context, token uuid.UUID) (*social.User, error) {
	session, err := s.sessions.FindWhere(ctx, validatedByToken, []any{token.String()}, "owner")
	if err != nil {
		return nil, oops.Code("AUTH_RESOLVE_FAILED").Wrap(err)
	}
	if session == nil {
		recordLogin("resolve", "rejected")
		return nil, nil
	}
	recordLogin("resolve", "resolved")
	return session.Owner, nil
}
