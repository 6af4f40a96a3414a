// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/driftline/pkg/errutil"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestNewTransactor_NilDB(t *testing.T) {
	_, err := NewTransactor(nil)
	errutil.AssertErrorCode(t, err, "TX_CONFIG_INVALID")
}

func TestTransactor_CommitOnSuccess(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE things").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	tr, err := NewTransactor(mock)
	require.NoError(t, err)

	err = tr.InTransaction(context.Background(), func(ctx context.Context, q Querier) error {
		_, execErr := q.Exec(ctx, "UPDATE things SET a = 1")
		return execErr
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollbackOnError(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	tr, err := NewTransactor(mock)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tr.InTransaction(context.Background(), func(context.Context, Querier) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_BeginFailure(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	tr, err := NewTransactor(mock)
	require.NoError(t, err)

	called := false
	err = tr.InTransaction(context.Background(), func(context.Context, Querier) error {
		called = true
		return nil
	})
	errutil.AssertErrorCode(t, err, "TX_BEGIN_FAILED")
	assert.False(t, called, "fn must not run without a transaction")
}

func TestTransactor_CommitFailure(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	tr, err := NewTransactor(mock)
	require.NoError(t, err)

	err = tr.InTransaction(context.Background(), func(context.Context, Querier) error {
		return nil
	})
	errutil.AssertErrorCode(t, err, "TX_COMMIT_FAILED")
}
