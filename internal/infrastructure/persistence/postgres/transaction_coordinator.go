package postgres

import (
	"context"
	"fmt"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionCoordinator manages transactions across multiple repositories
type TransactionCoordinator struct {
	pool *pgxpool.Pool
}

func NewTransactionCoordinator(db *DB) *TransactionCoordinator {
	return &TransactionCoordinator{
		pool: db.Pool,
	}
}

var _ application.TransactionManager = (*TransactionCoordinator)(nil)

// WithinTransaction executes a function within a database transaction
// The function receives repository instances that use the transaction
func (tc *TransactionCoordinator) WithinTransaction(
	ctx context.Context,
	fn func(ctx context.Context, repos application.TxRepositories) error,
) error {
	tx, err := tc.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	repos := application.TxRepositories{
		Contributions: &ContributionRepository{q: tx},
		AccessCodes:   &AccessCodeRepository{q: tx},
		Recurs:        &RecurRepository{q: tx},
	}

	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
