// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package mail

import (
	"context"
	"log/slog"
)

// LogSender is the development transport: it logs the message envelope
// instead of delivering it. The body, which carries the login secret, is
// logged at debug level only.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "mail dispatched",
		"recipient", msg.Recipient,
		"subject", msg.Subject,
	)
	s.logger.DebugContext(ctx, "mail body", "body", msg.Body)
	return nil
}
