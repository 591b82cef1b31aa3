package postgres

import (
	"time"
)

// ContributionModel mirrors a contributions row. Amounts are read as text so the
// NUMERIC precision survives the round trip.
type ContributionModel struct {
	ID                  int64
	ContactID           int64
	InvoiceID           *string
	Amount              string
	Currency            string
	Status              string
	TransactionID       *string
	ContributionRecurID *int64
	IsTest              bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type ContributionRecurModel struct {
	ID                         int64
	ContactID                  int64
	PaymentProcessorID         int64
	ProcessorSubscriptionToken string
	Status                     string
	FailureCount               int
	NextScheduledDate          *time.Time
	Amount                     string
	UpdatedAt                  time.Time
}

// AccessCodeModel is a row of eway_contribution_transactions.
type AccessCodeModel struct {
	AccessCode         string
	ContributionID     int64
	PaymentProcessorID int64
	CreatedAt          time.Time
	FinalizedAt        *time.Time
	LastCheckedAt      *time.Time
}

type PaymentProcessorModel struct {
	ID          int64
	Name        string
	APIKey      string
	APIPassword string
	IsTest      bool
	IsActive    bool
}
