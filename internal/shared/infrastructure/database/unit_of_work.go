package database

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoTransaction is returned by Commit and Rollback on a context that did
// not come from Begin.
var ErrNoTransaction = errors.New("database: no transaction bound to context")

// UnitOfWork groups a command's task writes and outbox rows into one
// transaction. A Begin on a context that already carries a transaction joins
// it, and only the outermost unit commits or rolls back.
type UnitOfWork struct {
	conn Connection
}

// NewUnitOfWork returns a UnitOfWork over conn.
func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// Begin binds a transaction to the returned context.
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if outer, ok := boundFrom(ctx); ok {
		return bindTx(ctx, outer.tx, false), nil
	}
	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return bindTx(ctx, tx, true), nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	return finish(ctx, Transaction.Commit)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	return finish(ctx, Transaction.Rollback)
}

func finish(ctx context.Context, end func(Transaction, context.Context) error) error {
	b, ok := boundFrom(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !b.owner {
		return nil
	}
	return end(b.tx, ctx)
}
