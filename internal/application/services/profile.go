package services

import (
	"context"
	"strconv"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

// ProfileBuilder turns host billing parameters into a gateway customer record.
type ProfileBuilder struct {
	countries application.CountryLookup
}

func NewProfileBuilder(countries application.CountryLookup) *ProfileBuilder {
	return &ProfileBuilder{countries: countries}
}

// Build resolves the payer's ISO country code and copies the billing fields.
// It fails with a missing-country error when no code can be found.
func (b *ProfileBuilder) Build(ctx context.Context, params domain.PaymentParams) (domain.CustomerProfile, error) {
	country, err := b.resolveCountry(ctx, params)
	if err != nil {
		return domain.CustomerProfile{}, err
	}

	// A country name instead of a code; look the code up by id.
	if len(country) > 2 {
		country = ""
		if params.CountryID != 0 {
			if country, err = b.isoCode(ctx, params.CountryID); err != nil {
				return domain.CustomerProfile{}, err
			}
		}
	}
	if country == "" || len(country) > 2 {
		return domain.CustomerProfile{}, domain.NewMissingCountryError()
	}

	profile := domain.CustomerProfile{
		FirstName:       params.FirstName,
		LastName:        params.LastName,
		Street1:         params.StreetAddress,
		City:            params.City,
		State:           params.StateProvince,
		PostalCode:      params.PostalCode,
		Country:         country,
		Email:           params.Email,
		TokenCustomerID: params.SubscriptionID,
	}
	if params.ContactID != 0 {
		profile.Reference = "Civi-" + strconv.FormatInt(params.ContactID, 10)
	}

	return profile, nil
}

func (b *ProfileBuilder) resolveCountry(ctx context.Context, params domain.PaymentParams) (string, error) {
	if params.Country != "" {
		return params.Country, nil
	}

	countryID := params.CountryID
	if countryID == 0 {
		billingTypeID, err := b.countries.BillingLocationTypeID(ctx)
		if err != nil {
			return "", application.NewInternalError(err)
		}
		countryID = params.BillingCountryIDs[billingTypeID]
	}
	if countryID == 0 {
		return "", nil
	}

	return b.isoCode(ctx, countryID)
}

func (b *ProfileBuilder) isoCode(ctx context.Context, countryID int64) (string, error) {
	code, err := b.countries.ISOCode(ctx, countryID)
	if err != nil {
		return "", application.NewInternalError(err)
	}
	return code, nil
}
