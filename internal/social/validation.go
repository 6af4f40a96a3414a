// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package social

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// Field length limits. These mirror the column widths enforced by the
// schema; validators reject before a statement is ever issued.
const (
	MaxUsernameLen   = 40
	MaxChosenNameLen = 50
	MaxPhoneLen      = 20
	MaxEmailLen      = 255
	MaxBioLen        = 1000
	MaxURLLen        = 2048
	MaxMediaTypeLen  = 100
	MaxBodyLen       = 5000
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidationError reports a rejected field along with the rule it broke.
// Callers can surface Field and Rule directly to an end user.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Rule)
}

func invalid(field, rule string) error {
	return &ValidationError{Field: field, Rule: rule}
}

func validateUsername(username string) error {
	switch {
	case username == "":
		return invalid("username", "must not be empty")
	case len(username) > MaxUsernameLen:
		return invalid("username", fmt.Sprintf("must be at most %d characters", MaxUsernameLen))
	case !usernamePattern.MatchString(username):
		return invalid("username", "may only contain lowercase letters, digits and underscores")
	}
	return nil
}

func validateEmail(address string) error {
	if address == "" {
		return nil
	}
	if len(address) > MaxEmailLen {
		return invalid("email", fmt.Sprintf("must be at most %d characters", MaxEmailLen))
	}
	if _, err := mail.ParseAddress(address); err != nil {
		return invalid("email", "must be a valid address")
	}
	return nil
}

func validatePhone(number string) error {
	if number == "" {
		return nil
	}
	if len(number) > MaxPhoneLen {
		return invalid("phone", fmt.Sprintf("must be at most %d characters", MaxPhoneLen))
	}
	for _, r := range number {
		if r != '+' && r != ' ' && (r < '0' || r > '9') {
			return invalid("phone", "may only contain digits, spaces and a leading +")
		}
	}
	return nil
}

// normalizeOptional collapses whitespace-only input to the empty string,
// the stored representation for an unset optional field.
func normalizeOptional(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
