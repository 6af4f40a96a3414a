// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

// Package store provides the PostgreSQL connection, schema migrations, and
// the unit-of-work primitive the entity layer is built on.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier abstracts query execution over *pgxpool.Pool, pgx.Tx, and the
// pgxmock pool used in tests. Repository-level code only ever sees this.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the full connection surface the store exposes. *pgxpool.Pool and
// pgxmock.PgxPoolIface both satisfy it.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}
