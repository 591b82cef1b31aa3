package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/jackc/pgx/v5"
)

const recurColumns = `
	id, contact_id, payment_processor_id, processor_subscription_token, status,
	failure_count, next_scheduled_date, amount::text, updated_at`

type RecurRepository struct {
	q Executor
}

func NewRecurRepository(db *DB) *RecurRepository {
	return &RecurRepository{q: db.Pool}
}

var _ application.RecurRepository = (*RecurRepository)(nil)

func (r *RecurRepository) FindByID(ctx context.Context, id int64) (*domain.ContributionRecur, error) {
	query := `SELECT ` + recurColumns + ` FROM contribution_recurs WHERE id = $1`

	recur, err := scanRecur(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewSubscriptionNotFoundError(strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("find recurring contribution %d: %w", id, err)
	}
	return recur, nil
}

// FindByProcessorToken looks a series up by the gateway token customer id it was enrolled with.
func (r *RecurRepository) FindByProcessorToken(ctx context.Context, processorID int64, token string) (*domain.ContributionRecur, error) {
	query := `SELECT ` + recurColumns + `
		FROM contribution_recurs
		WHERE payment_processor_id = $1 AND processor_subscription_token = $2`

	recur, err := scanRecur(r.q.QueryRow(ctx, query, processorID, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewSubscriptionNotFoundError(token)
		}
		return nil, fmt.Errorf("find recurring contribution by token: %w", err)
	}
	return recur, nil
}

func (r *RecurRepository) Update(ctx context.Context, recur *domain.ContributionRecur) error {
	query := `
		UPDATE contribution_recurs
		SET status = $1, failure_count = $2, next_scheduled_date = $3, updated_at = $4,
			processor_subscription_token = $5
		WHERE id = $6
	`

	updatedAt := recur.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	tag, err := r.q.Exec(ctx, query,
		string(recur.Status),
		recur.FailureCount,
		recur.NextScheduledDate,
		updatedAt,
		recur.ProcessorSubscriptionToken,
		recur.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update recurring contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewSubscriptionNotFoundError(recur.ProcessorSubscriptionToken)
	}
	return nil
}

func scanRecur(row pgx.Row) (*domain.ContributionRecur, error) {
	var m ContributionRecurModel
	err := row.Scan(
		&m.ID, &m.ContactID, &m.PaymentProcessorID, &m.ProcessorSubscriptionToken, &m.Status,
		&m.FailureCount, &m.NextScheduledDate, &m.Amount, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return toDomainRecur(m), nil
}
