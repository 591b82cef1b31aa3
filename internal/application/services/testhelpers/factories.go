package testhelpers

import (
	"context"
	"testing"

	"github.com/DanielPopoola/eway-recurring/internal/infrastructure/persistence/postgres"
	"github.com/stretchr/testify/require"
)

// CreateProcessor inserts a payment processor with the given credentials.
func CreateProcessor(t *testing.T, ctx context.Context, db *postgres.DB, apiKey, apiPassword string) int64 {
	t.Helper()
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO payment_processors (name, api_key, api_password, is_test)
		VALUES ('eWAY Recurring', $1, $2, TRUE)
		RETURNING id
	`, apiKey, apiPassword).Scan(&id)
	require.NoError(t, err)
	return id
}

func CreateCountry(t *testing.T, ctx context.Context, db *postgres.DB, id int64, name, iso string) {
	t.Helper()
	_, err := db.Pool.Exec(ctx, `INSERT INTO countries (id, name, iso_code) VALUES ($1, $2, $3)`, id, name, iso)
	require.NoError(t, err)
}

// CreateContribution inserts a pending contribution. invoiceID may be empty.
func CreateContribution(t *testing.T, ctx context.Context, db *postgres.DB, contactID int64, amount, invoiceID string, recurID *int64) int64 {
	t.Helper()
	var invoice *string
	if invoiceID != "" {
		invoice = &invoiceID
	}

	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO contributions (contact_id, invoice_id, amount, contribution_recur_id)
		VALUES ($1, $2, $3::numeric, $4)
		RETURNING id
	`, contactID, invoice, amount, recurID).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateRecur inserts a recurring series in the given status.
func CreateRecur(t *testing.T, ctx context.Context, db *postgres.DB, processorID, contactID int64, token, status string) int64 {
	t.Helper()
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO contribution_recurs (contact_id, payment_processor_id, processor_subscription_token, status, amount)
		VALUES ($1, $2, $3, $4, 10.00)
		RETURNING id
	`, contactID, processorID, token, status).Scan(&id)
	require.NoError(t, err)
	return id
}
