package rest

import (
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

type BillingDetails struct {
	FirstName         string          `json:"first_name" validate:"required"`
	LastName          string          `json:"last_name" validate:"required"`
	StreetAddress     string          `json:"street_address"`
	City              string          `json:"city"`
	StateProvince     string          `json:"state_province"`
	PostalCode        string          `json:"postal_code"`
	Country           string          `json:"country"`
	CountryID         int64           `json:"country_id"`
	BillingCountryIDs map[int64]int64 `json:"billing_country_ids"`
	Email             string          `json:"email" validate:"omitempty,email"`
}

type PaymentRequest struct {
	BillingDetails
	ContactID          int64  `json:"contact_id" validate:"required"`
	ContributionPageID int64  `json:"contribution_page_id"`
	PaymentProcessorID int64  `json:"payment_processor_id" validate:"required"`
	InvoiceID          string `json:"invoice_id" validate:"required"`
	Description        string `json:"description"`
	Amount             string `json:"amount" validate:"required"`
	IsRecur            bool   `json:"is_recur"`
	IPAddress          string `json:"ip_address" validate:"omitempty,ip"`
	QFKey              string `json:"qf_key"`
	SuccessURL         string `json:"success_url" validate:"omitempty,url"`
	CancelURL          string `json:"cancel_url" validate:"omitempty,url"`
}

type BillingRequest struct {
	BillingDetails
	ContactID int64 `json:"contact_id"`
}

type ScheduleRequest struct {
	NextScheduledDate time.Time `json:"next_scheduled_date" validate:"required"`
}

type RedirectData struct {
	ContributionID int64  `json:"contribution_id"`
	AccessCode     string `json:"access_code"`
	RedirectURL    string `json:"redirect_url"`
}

type Contribution struct {
	ID                  int64  `json:"id"`
	ContactID           int64  `json:"contact_id"`
	InvoiceID           string `json:"invoice_id,omitempty"`
	Amount              string `json:"amount"`
	Currency            string `json:"currency"`
	Status              string `json:"status"`
	TransactionID       string `json:"transaction_id,omitempty"`
	ContributionRecurID *int64 `json:"contribution_recur_id,omitempty"`
}

type Subscription struct {
	ID                 int64      `json:"id"`
	PaymentProcessorID int64      `json:"payment_processor_id"`
	Token              string     `json:"token"`
	Status             string     `json:"status"`
	FailureCount       int        `json:"failure_count"`
	NextScheduledDate  *time.Time `json:"next_scheduled_date,omitempty"`
}

type DataResponse struct {
	Success  bool     `json:"success"`
	Data     any      `json:"data"`
	Messages []string `json:"messages,omitempty"`
}

func (b BillingDetails) apply(p *domain.PaymentParams) {
	p.FirstName = b.FirstName
	p.LastName = b.LastName
	p.StreetAddress = b.StreetAddress
	p.City = b.City
	p.StateProvince = b.StateProvince
	p.PostalCode = b.PostalCode
	p.Country = b.Country
	p.CountryID = b.CountryID
	p.BillingCountryIDs = b.BillingCountryIDs
	p.Email = b.Email
}

// ToPaymentParams fills the parameter bag for a submission. remoteIP is used when the
// body carries no payer address.
func (r PaymentRequest) ToPaymentParams(contributionID int64, remoteIP string) domain.PaymentParams {
	params := domain.PaymentParams{
		ContactID:          r.ContactID,
		ContributionID:     contributionID,
		ContributionPageID: r.ContributionPageID,
		PaymentProcessorID: r.PaymentProcessorID,
		InvoiceID:          r.InvoiceID,
		Description:        r.Description,
		Amount:             r.Amount,
		IsRecur:            r.IsRecur,
		IPAddress:          r.IPAddress,
		QFKey:              r.QFKey,
		SuccessURL:         r.SuccessURL,
		CancelURL:          r.CancelURL,
	}
	if params.IPAddress == "" {
		params.IPAddress = remoteIP
	}
	r.BillingDetails.apply(&params)
	return params
}

func (r BillingRequest) ToPaymentParams(processorID int64, token string) domain.PaymentParams {
	params := domain.PaymentParams{
		ContactID:          r.ContactID,
		PaymentProcessorID: processorID,
		SubscriptionID:     token,
	}
	r.BillingDetails.apply(&params)
	return params
}

func ToAPIContribution(c *domain.Contribution) Contribution {
	out := Contribution{
		ID:                  c.ID,
		ContactID:           c.ContactID,
		InvoiceID:           c.InvoiceID,
		Amount:              c.Amount,
		Currency:            c.Currency,
		Status:              string(c.Status),
		ContributionRecurID: c.ContributionRecurID,
	}
	if c.TransactionID != nil {
		out.TransactionID = *c.TransactionID
	}
	return out
}

func ToAPISubscription(r *domain.ContributionRecur) Subscription {
	return Subscription{
		ID:                 r.ID,
		PaymentProcessorID: r.PaymentProcessorID,
		Token:              r.ProcessorSubscriptionToken,
		Status:             string(r.Status),
		FailureCount:       r.FailureCount,
		NextScheduledDate:  r.NextScheduledDate,
	}
}

func ToRedirectData(t *domain.RedirectTarget) RedirectData {
	return RedirectData{
		ContributionID: t.ContributionID,
		AccessCode:     t.AccessCode,
		RedirectURL:    t.URL,
	}
}

