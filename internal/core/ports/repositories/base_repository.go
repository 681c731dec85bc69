package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager exposes explicit transaction control so services can make
// document plus line plus link updates atomic.
type TransactionManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits the given transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback aborts the given transaction. Calling it after Commit is a
	// no-op.
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// RepositoryWithTx marks repositories whose write methods accept an optional
// pgx.Tx.
type RepositoryWithTx interface {
	TransactionManager
}
