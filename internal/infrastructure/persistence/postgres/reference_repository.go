package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/jackc/pgx/v5"
)

const billingLocationType = "Billing"

// CountryRepository reads the host's country and location type reference tables.
type CountryRepository struct {
	q Executor
}

func NewCountryRepository(db *DB) *CountryRepository {
	return &CountryRepository{q: db.Pool}
}

var _ application.CountryLookup = (*CountryRepository)(nil)

func (r *CountryRepository) BillingLocationTypeID(ctx context.Context) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `SELECT id FROM location_types WHERE name = $1`, billingLocationType).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("find billing location type: %w", err)
	}
	return id, nil
}

// ISOCode returns "" for an unknown country id so the caller can report a missing country.
func (r *CountryRepository) ISOCode(ctx context.Context, countryID int64) (string, error) {
	var code string
	err := r.q.QueryRow(ctx, `SELECT iso_code FROM countries WHERE id = $1`, countryID).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("find country %d: %w", countryID, err)
	}
	return strings.TrimSpace(code), nil
}

// ProcessorRepository loads payment processor credentials.
type ProcessorRepository struct {
	q Executor
}

func NewProcessorRepository(db *DB) *ProcessorRepository {
	return &ProcessorRepository{q: db.Pool}
}

func (r *ProcessorRepository) FindByID(ctx context.Context, id int64) (*domain.PaymentProcessor, error) {
	query := `
		SELECT id, name, api_key, api_password, is_test, is_active
		FROM payment_processors
		WHERE id = $1
	`

	var m PaymentProcessorModel
	err := r.q.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.APIKey, &m.APIPassword, &m.IsTest, &m.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewProcessorNotFoundError(id)
		}
		return nil, fmt.Errorf("find payment processor %d: %w", id, err)
	}
	return toDomainProcessor(m), nil
}
