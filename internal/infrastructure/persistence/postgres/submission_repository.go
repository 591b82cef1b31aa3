package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/jackc/pgx/v5"
)

// SubmissionRepository claims invoice ids before they are sent to the gateway.
// The unique index on contributions.invoice_id and the primary key on
// contribution_submissions are authoritative; the lookup only short-circuits the common case.
type SubmissionRepository struct {
	db *DB
}

func NewSubmissionRepository(db *DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

var _ application.DuplicateChecker = (*SubmissionRepository)(nil)

func (r *SubmissionRepository) ClaimInvoice(ctx context.Context, invoiceID string, contributionID int64) error {
	var ownerID int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id FROM contributions WHERE invoice_id = $1 AND id <> $2 LIMIT 1`,
		invoiceID, contributionID,
	).Scan(&ownerID)
	switch {
	case err == nil:
		return domain.NewDuplicateSubmissionError(invoiceID)
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("check invoice id: %w", err)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE contributions SET invoice_id = $1 WHERE id = $2 AND invoice_id IS NULL`,
		invoiceID, contributionID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.NewDuplicateSubmissionError(invoiceID)
		}
		return fmt.Errorf("assign invoice id: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO contribution_submissions (invoice_id, contribution_id) VALUES ($1, $2)`,
		invoiceID, contributionID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.NewDuplicateSubmissionError(invoiceID)
		}
		return fmt.Errorf("claim invoice id: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
