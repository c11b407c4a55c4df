package database

import "context"

type txKey struct{}

// boundTx is the transaction carried by a context. owner is false when a
// nested unit of work joined a transaction begun further up the call chain.
type boundTx struct {
	tx    Transaction
	owner bool
}

func bindTx(ctx context.Context, tx Transaction, owner bool) context.Context {
	return context.WithValue(ctx, txKey{}, boundTx{tx: tx, owner: owner})
}

func boundFrom(ctx context.Context) (boundTx, bool) {
	b, ok := ctx.Value(txKey{}).(boundTx)
	return b, ok && b.tx != nil
}

// TxFromContext returns the transaction bound to ctx by a UnitOfWork, or nil.
func TxFromContext(ctx context.Context) Transaction {
	b, _ := boundFrom(ctx)
	return b.tx
}

// ExecutorFromContext lets a repository write through the caller's
// transaction when one is bound and straight to conn otherwise.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return conn
}
