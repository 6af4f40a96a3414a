// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package store

import (
	"context"

	"github.com/samber/oops"
)

// Transactor produces independent, short-lived units of work. Each call to
// InTransaction opens its own transaction; units of work are never cached,
// shared, or stored in a field that outlives one logical operation.
type Transactor struct {
	db DB
}

// NewTransactor creates a Transactor backed by the given connection.
func NewTransactor(db DB) (*Transactor, error) {
	if db == nil {
		return nil, oops.Code("TX_CONFIG_INVALID").Errorf("database connection is required")
	}
	return &Transactor{db: db}, nil
}

// InTransaction begins a transaction and calls fn with a Querier scoped to
// it. If fn returns nil, the transaction is committed. Otherwise it is
// rolled back. The Querier must not escape fn.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}
