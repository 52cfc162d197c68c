package repositories

import "context"

// TxFn runs within a transaction carried by the context.
type TxFn func(ctx context.Context) error

// TransactionManager wraps a unit of work in a database transaction. Action
// application relies on this: the history append and the step transition
// must commit together or not at all.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
