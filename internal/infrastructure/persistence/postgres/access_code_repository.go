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

// AccessCodeRepository stores the access code ↔ contribution ↔ processor link in
// eway_contribution_transactions.
type AccessCodeRepository struct {
	q Executor
}

func NewAccessCodeRepository(db *DB) *AccessCodeRepository {
	return &AccessCodeRepository{q: db.Pool}
}

var _ application.AccessCodeRepository = (*AccessCodeRepository)(nil)

func (r *AccessCodeRepository) Create(ctx context.Context, record *domain.AccessCodeRecord) error {
	query := `
		INSERT INTO eway_contribution_transactions (
			access_code, contribution_id, payment_processor_id, created_at, finalized_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
		record.CreatedAt = createdAt
	}

	_, err := r.q.Exec(ctx, query,
		record.AccessCode,
		record.ContributionID,
		record.PaymentProcessorID,
		createdAt,
		record.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create access code record: %w", err)
	}
	return nil
}

func (r *AccessCodeRepository) FindByAccessCode(ctx context.Context, accessCode string) (*domain.AccessCodeRecord, error) {
	query := `
		SELECT access_code, contribution_id, payment_processor_id, created_at, finalized_at, last_checked_at
		FROM eway_contribution_transactions
		WHERE access_code = $1
	`

	var m AccessCodeModel
	err := r.q.QueryRow(ctx, query, accessCode).Scan(
		&m.AccessCode, &m.ContributionID, &m.PaymentProcessorID, &m.CreatedAt, &m.FinalizedAt, &m.LastCheckedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewUnknownAccessCodeError(accessCode)
		}
		return nil, fmt.Errorf("find access code: %w", err)
	}
	return toDomainAccessCode(m), nil
}

// MarkFinalized sets finalized_at only if it is still NULL. It returns false when
// another caller got there first.
func (r *AccessCodeRepository) MarkFinalized(ctx context.Context, accessCode string, at time.Time) (bool, error) {
	query := `
		UPDATE eway_contribution_transactions
		SET finalized_at = $1
		WHERE access_code = $2 AND finalized_at IS NULL
	`

	tag, err := r.q.Exec(ctx, query, at, accessCode)
	if err != nil {
		return false, fmt.Errorf("failed to finalize access code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AccessCodeRepository) MarkChecked(ctx context.Context, accessCode string, at time.Time) error {
	query := `
		UPDATE eway_contribution_transactions
		SET last_checked_at = $1
		WHERE access_code = $2 AND finalized_at IS NULL
	`

	if _, err := r.q.Exec(ctx, query, at, accessCode); err != nil {
		return fmt.Errorf("failed to mark access code checked: %w", err)
	}
	return nil
}

// FindUnfinalized returns access codes still awaiting confirmation. Codes never checked
// come first by age; checked codes rotate to the back by their last check.
func (r *AccessCodeRepository) FindUnfinalized(ctx context.Context, createdBefore time.Time, limit int) ([]*domain.AccessCodeRecord, error) {
	query := `
		SELECT access_code, contribution_id, payment_processor_id, created_at, finalized_at, last_checked_at
		FROM eway_contribution_transactions
		WHERE finalized_at IS NULL
		  AND created_at < $1
		ORDER BY COALESCE(last_checked_at, created_at) ASC, created_at ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, createdBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("query unfinalized access codes: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.AccessCodeRecord, error) {
		var m AccessCodeModel
		err := row.Scan(&m.AccessCode, &m.ContributionID, &m.PaymentProcessorID, &m.CreatedAt, &m.FinalizedAt, &m.LastCheckedAt)
		return toDomainAccessCode(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan unfinalized access codes: %w", err)
	}
	return results, nil
}
