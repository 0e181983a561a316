package tx

import (
	"context"
	"database/sql"
	"fmt"
)

// Runner executes a function as one atomic unit of work. Every operation that
// combines local record mutations with an external ledger call runs under a
// Runner so that a failed ledger call rolls back the local mutations.
type Runner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// DBRunner wraps fn in a *sql.Tx placed in the context; stores that honor
// tx.From participate in the transaction.
type DBRunner struct {
	db *sql.DB
}

// NewDB creates a Runner backed by a SQL database.
func NewDB(db *sql.DB) *DBRunner {
	return &DBRunner{db: db}
}

// Do runs fn inside a transaction. If the context already carries a
// transaction, fn joins it instead of opening a nested one.
func (r *DBRunner) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// PassthroughRunner runs fn directly. Used with in-memory stores, where each
// store call is already atomic and there is nothing to roll back.
type PassthroughRunner struct{}

// Passthrough returns a Runner that invokes fn without a transaction.
func Passthrough() PassthroughRunner {
	return PassthroughRunner{}
}

// Do invokes fn with the unmodified context.
func (PassthroughRunner) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
