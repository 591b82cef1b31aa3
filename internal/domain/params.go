package domain

// PaymentParams is the parameter bag supplied by the host for a submission or a
// billing update.
type PaymentParams struct {
	ContactID          int64
	ContributionID     int64
	ContributionPageID int64
	PaymentProcessorID int64

	InvoiceID   string
	Description string
	Amount      string
	IsRecur     bool
	IPAddress   string
	QFKey       string

	FirstName     string
	LastName      string
	StreetAddress string
	City          string
	StateProvince string
	PostalCode    string
	Country       string
	CountryID     int64
	Email         string

	// BillingCountryIDs maps a location type id to the country id entered for it.
	BillingCountryIDs map[int64]int64

	SubscriptionID string

	SuccessURL string
	CancelURL  string
}

// FromContributionPage reports whether the payer submitted a public contribution page.
func (p PaymentParams) FromContributionPage() bool {
	return p.ContributionPageID != 0
}
