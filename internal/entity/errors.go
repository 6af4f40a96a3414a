// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package entity

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a keyed operation requires a row that no
// longer exists. Plain fetch operations never return it; absence there is an
// empty result.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert collides with an existing row, for
// example an unpersisted reference whose key matches a stored entity.
var ErrConflict = errors.New("conflict with existing row")

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
