// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

// Package mail composes and dispatches the login mails the auth flow
// sends. Transports implement Sender; delivery guarantees live with the
// transport, not here.
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/driftline/driftline/internal/auth"
)

// Message is one outbound mail, transport-agnostic.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Sender delivers a composed message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LoginLink builds the path a login mail points at. The secret travels
// only inside this link.
func LoginLink(baseURL string, requestID uuid.UUID, secret string) string {
	return strings.TrimRight(baseURL, "/") + "/auth/complete/" + requestID.String() + "/" + secret
}

// LoginMailer composes login-link mails for an instance and hands them
// to a transport. It implements auth.Mailer.
type LoginMailer struct {
	sender   Sender
	instance string
	baseURL  string
}

func NewLoginMailer(sender Sender, instance, baseURL string) (*LoginMailer, error) {
	if sender == nil {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("sender is required")
	}
	if instance == "" || baseURL == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("instance name and base URL are required")
	}
	return &LoginMailer{sender: sender, instance: instance, baseURL: baseURL}, nil
}

func (m *LoginMailer) SendLoginLink(ctx context.Context, login auth.LoginMail) error {
	msg := Message{
		Recipient: login.Identifier,
		Subject:   fmt.Sprintf("Sign in to %s", m.instance),
		Body: fmt.Sprintf(
			"Hello %s,\n\n"+
				"Someone asked to sign in to %s with this address. If that was you,\n"+
				"open the link below to finish signing in:\n\n"+
				"  %s\n\n"+
				"The link works once. If this wasn't you, ignore this mail.\n",
			login.Username, m.instance, LoginLink(m.baseURL, login.RequestID, login.Secret)),
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("recipient", msg.Recipient).Wrap(err)
	}
	return nil
}
