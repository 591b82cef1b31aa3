package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/jackc/pgx/v5"
)

const contributionColumns = `
	id, contact_id, invoice_id, amount::text, currency, status,
	transaction_id, contribution_recur_id, is_test, created_at, updated_at`

type ContributionRepository struct {
	q Executor
}

func NewContributionRepository(db *DB) *ContributionRepository {
	return &ContributionRepository{q: db.Pool}
}

var _ application.ContributionRepository = (*ContributionRepository)(nil)

// FindByID retrieves a contribution
func (r *ContributionRepository) FindByID(ctx context.Context, id int64) (*domain.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions WHERE id = $1`

	row := r.q.QueryRow(ctx, query, id)
	contribution, err := scanContribution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewContributionNotFoundError(id)
		}
		return nil, fmt.Errorf("find contribution %d: %w", id, err)
	}
	return contribution, nil
}

// Update writes the fields this service owns: status and transaction id.
func (r *ContributionRepository) Update(ctx context.Context, contribution *domain.Contribution) error {
	query := `
		UPDATE contributions
		SET status = $1, transaction_id = $2, updated_at = $3
		WHERE id = $4
	`

	updatedAt := contribution.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	tag, err := r.q.Exec(ctx, query,
		string(contribution.Status),
		contribution.TransactionID,
		updatedAt,
		contribution.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewContributionNotFoundError(contribution.ID)
	}

	return nil
}

func scanContribution(row pgx.Row) (*domain.Contribution, error) {
	var m ContributionModel
	err := row.Scan(
		&m.ID, &m.ContactID, &m.InvoiceID, &m.Amount, &m.Currency, &m.Status,
		&m.TransactionID, &m.ContributionRecurID, &m.IsTest, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return toDomainContribution(m), nil
}
