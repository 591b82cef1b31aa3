package application

import (
	"context"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

// GatewayClient is the port for the external payment gateway.
type GatewayClient interface {
	// Errors lists problems recorded while the client was built. A client with errors
	// must not be used for network calls.
	Errors() []string
	CreateTransaction(ctx context.Context, req domain.TransactionRequest) (*domain.GatewayResponse, error)
	QueryTransaction(ctx context.Context, accessCode string) (*domain.TransactionResult, error)
	UpdateCustomer(ctx context.Context, customer domain.CustomerProfile) (*domain.GatewayResponse, error)
}

// GatewayProvider hands out the client configured for a payment processor.
type GatewayProvider interface {
	Client(ctx context.Context, processorID int64) (GatewayClient, error)
}

// ErrorMessages maps a gateway error or response code to readable text.
type ErrorMessages interface {
	Message(code string) string
}

// CountryLookup resolves host country ids to ISO 3166 alpha-2 codes.
type CountryLookup interface {
	BillingLocationTypeID(ctx context.Context) (int64, error)
	ISOCode(ctx context.Context, countryID int64) (string, error)
}

// ContributionRepository is the port for contribution persistence.
type ContributionRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Contribution, error)
	Update(ctx context.Context, contribution *domain.Contribution) error
}

// DuplicateChecker claims an invoice id for submission. It fails with a
// duplicate-submission error when the invoice id belongs to another contribution or has
// already been sent to the gateway.
type DuplicateChecker interface {
	ClaimInvoice(ctx context.Context, invoiceID string, contributionID int64) error
}

// AccessCodeRepository persists the access code ↔ contribution ↔ processor link.
type AccessCodeRepository interface {
	Create(ctx context.Context, record *domain.AccessCodeRecord) error
	FindByAccessCode(ctx context.Context, accessCode string) (*domain.AccessCodeRecord, error)
	// MarkFinalized returns false when the record was already finalized.
	MarkFinalized(ctx context.Context, accessCode string, at time.Time) (bool, error)
	// MarkChecked records a background check that left the access code open, moving it
	// behind codes that have not been checked as recently.
	MarkChecked(ctx context.Context, accessCode string, at time.Time) error
	// FindUnfinalized returns open access codes created before createdBefore, least
	// recently checked first.
	FindUnfinalized(ctx context.Context, createdBefore time.Time, limit int) ([]*domain.AccessCodeRecord, error)
}

// RecurRepository is the port for recurring series persistence.
type RecurRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.ContributionRecur, error)
	FindByProcessorToken(ctx context.Context, processorID int64, token string) (*domain.ContributionRecur, error)
	Update(ctx context.Context, recur *domain.ContributionRecur) error
}

// TxRepositories are bound to a single storage transaction.
type TxRepositories struct {
	Contributions ContributionRepository
	AccessCodes   AccessCodeRepository
	Recurs        RecurRepository
}

// TransactionManager runs fn inside one storage transaction.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

// ConfirmationLocker serializes work on a single key across processes.
type ConfirmationLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// EventPublisher announces status changes to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, change domain.StatusChange) error
}

// MetricsRecorder observes gateway calls and status transitions.
type MetricsRecorder interface {
	GatewayCall(operation, outcome string, elapsed time.Duration)
	StatusTransition(entity string, to domain.ContributionStatus)
}
