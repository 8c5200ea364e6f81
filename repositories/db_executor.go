package repositories

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Executor is either a connection pool or an open transaction. Repository
// methods never open their own transactions: the unit of work is always
// decided by the caller, so a consent update and its audit insert can commit
// atomically.
type Executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ExecutorGetter struct {
	connectionPool *pgxpool.Pool
}

func NewExecutorGetter(pool *pgxpool.Pool) ExecutorGetter {
	return ExecutorGetter{
		connectionPool: pool,
	}
}

func (g ExecutorGetter) Executor() Executor {
	return g.connectionPool
}

const maxTransactionAttempts = 3

// Transaction runs fn inside one transaction; any error returned by fn rolls
// the whole unit of work back. A detected deadlock aborts the whole
// transaction, so the closure can safely be retried from scratch.
func (g ExecutorGetter) Transaction(ctx context.Context, fn func(tx Executor) error) error {
	var err error
	for attempt := 1; attempt <= maxTransactionAttempts; attempt++ {
		err = pgx.BeginFunc(ctx, g.connectionPool, func(tx pgx.Tx) error {
			return fn(tx)
		})
		if !IsDeadlockError(err) {
			break
		}
	}
	return errors.Wrap(err, "error executing transaction")
}
