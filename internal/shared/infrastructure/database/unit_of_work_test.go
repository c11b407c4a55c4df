package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	Transaction
	commits, rollbacks int
}

func (f *fakeTx) Commit(context.Context) error   { f.commits++; return nil }
func (f *fakeTx) Rollback(context.Context) error { f.rollbacks++; return nil }

type fakeConn struct {
	Connection
	begun []*fakeTx
	err   error
}

func (f *fakeConn) BeginTx(context.Context) (Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	tx := &fakeTx{}
	f.begun = append(f.begun, tx)
	return tx, nil
}

func TestUnitOfWork(t *testing.T) {
	ctx := context.Background()

	t.Run("nested begin joins the outer transaction", func(t *testing.T) {
		conn := &fakeConn{}
		uow := NewUnitOfWork(conn)

		outer, err := uow.Begin(ctx)
		require.NoError(t, err)
		inner, err := uow.Begin(outer)
		require.NoError(t, err)

		require.Len(t, conn.begun, 1)
		assert.Same(t, TxFromContext(outer), TxFromContext(inner))

		require.NoError(t, uow.Commit(inner))
		assert.Zero(t, conn.begun[0].commits, "joined unit leaves the commit to its owner")
		require.NoError(t, uow.Rollback(inner))
		assert.Zero(t, conn.begun[0].rollbacks)

		require.NoError(t, uow.Commit(outer))
		assert.Equal(t, 1, conn.begun[0].commits)
	})

	t.Run("owner rolls back", func(t *testing.T) {
		conn := &fakeConn{}
		uow := NewUnitOfWork(conn)

		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, uow.Rollback(txCtx))
		assert.Equal(t, 1, conn.begun[0].rollbacks)
	})

	t.Run("finishing without begin", func(t *testing.T) {
		uow := NewUnitOfWork(&fakeConn{})
		assert.ErrorIs(t, uow.Commit(ctx), ErrNoTransaction)
		assert.ErrorIs(t, uow.Rollback(ctx), ErrNoTransaction)
	})

	t.Run("begin failure is wrapped", func(t *testing.T) {
		boom := errors.New("database is locked")
		_, err := NewUnitOfWork(&fakeConn{err: boom}).Begin(ctx)
		assert.ErrorIs(t, err, boom)
	})
}

func TestExecutorFromContext(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{}

	assert.Same(t, conn, ExecutorFromContext(ctx, conn).(*fakeConn))
	assert.Nil(t, TxFromContext(ctx))

	txCtx, err := NewUnitOfWork(conn).Begin(ctx)
	require.NoError(t, err)
	assert.Same(t, conn.begun[0], ExecutorFromContext(txCtx, conn).(*fakeTx))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(sql.ErrNoRows))
	assert.True(t, IsNoRows(pgx.ErrNoRows))
	assert.True(t, IsNoRows(fmt.Errorf("load task: %w", sql.ErrNoRows)))
	assert.False(t, IsNoRows(nil))
	assert.False(t, IsNoRows(errors.New("disk full")))
}
