// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

// Package auth implements passwordless, magic-link login.
//
// A login starts with an identifier (email or phone). If it matches an
// account, a pending session is created holding the SHA-256 digest of a
// freshly minted secret plus per-session entropy, and the secret rides
// out in a login mail. Redeeming the secret flips the session to
// validated, exactly once, and releases its bearer token. Validated
// tokens resolve back to the owning account.
//
// Failures that would reveal whether an identifier or token exists are
// folded into the success shape: StartLogin always returns a request
// identifier, CompleteLogin answers a bare yes/no, and ResolveBearer
// returns nil for anything it does not recognize.
package auth
