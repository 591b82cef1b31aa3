package domain

import "time"

// CustomerProfile is the gateway customer record built from billing input.
type CustomerProfile struct {
	Reference       string
	FirstName       string
	LastName        string
	Street1         string
	City            string
	State           string
	PostalCode      string
	Country         string
	Email           string
	TokenCustomerID string
}

const (
	InvoiceNumberLength      = 12
	InvoiceDescriptionLength = 64
)

// TransactionRequest is the gateway-agnostic shape of a responsive shared page purchase.
type TransactionRequest struct {
	Customer           CustomerProfile
	TotalAmount        int64
	InvoiceNumber      string
	InvoiceDescription string
	InvoiceReference   string
	RedirectURL        string
	CancelURL          string
	CustomerIP         string
	Capture            bool
	SaveCustomer       bool
	CustomerReadOnly   bool
	ContributionID     int64
}

// GatewayResponse is returned by transaction creation and customer updates.
// An empty ErrorCodes slice means the gateway accepted the request.
type GatewayResponse struct {
	AccessCode       string
	SharedPaymentURL string
	TokenCustomerID  string
	ErrorCodes       []string
}

// TransactionResult is the final outcome of a redirect-flow transaction.
type TransactionResult struct {
	AccessCode      string
	TransactionID   string
	Succeeded       bool
	TokenCustomerID string
	ResponseCodes   []string
	ErrorCodes      []string
}

// RedirectTarget is where the payer is sent to complete a redirect-flow payment.
type RedirectTarget struct {
	ContributionID int64
	AccessCode     string
	URL            string
}

// AccessCodeRecord links an in-flight gateway transaction to its contribution.
type AccessCodeRecord struct {
	AccessCode         string
	ContributionID     int64
	PaymentProcessorID int64
	CreatedAt          time.Time
	FinalizedAt        *time.Time
	// LastCheckedAt is set when a background check found the payer still on the hosted page.
	LastCheckedAt      *time.Time
}

func (r *AccessCodeRecord) IsFinalized() bool {
	return r.FinalizedAt != nil
}

// ConfirmationResult describes how a redirect confirmation ended.
type ConfirmationResult struct {
	ContributionID int64
	TransactionID  string
	Status         ContributionStatus
	Succeeded      bool
	Messages       []string
}
