package services_test

import (
	"io"
	"log/slog"

	"github.com/DanielPopoola/eway-recurring/internal/application/mocks"
	"github.com/DanielPopoola/eway-recurring/internal/application/services"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/DanielPopoola/eway-recurring/internal/infrastructure/eway"
)

const (
	testProcessorID  int64 = 7
	testContactID    int64 = 42
	billingTypeID    int64 = 5
	australiaID      int64 = 36
	newZealandID     int64 = 154
	testPublicBase         = "https://crm.example.org/civicrm"
	testContribution int64 = 1001
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCountries() *mocks.StaticCountries {
	return &mocks.StaticCountries{
		BillingTypeID: billingTypeID,
		Codes: map[int64]string{
			australiaID:  "AU",
			newZealandID: "NZ",
		},
	}
}

func testProfiles() *services.ProfileBuilder {
	return services.NewProfileBuilder(testCountries())
}

func testMessages() *eway.MessageTable {
	return eway.NewMessageTable(nil)
}

func defaultParams() domain.PaymentParams {
	return domain.PaymentParams{
		ContactID:          testContactID,
		PaymentProcessorID: testProcessorID,
		InvoiceID:          "a1b2c3d4e5f6a7b8c9d0",
		Description:        "Annual membership",
		Amount:             "10.00",
		IPAddress:          "203.0.113.9",
		QFKey:              "qf-123",
		FirstName:          "Ada",
		LastName:           "Lovelace",
		StreetAddress:      "1 Analytical Way",
		City:               "Melbourne",
		StateProvince:      "VIC",
		PostalCode:         "3000",
		CountryID:          australiaID,
		Email:              "ada@example.org",
	}
}

func pendingContribution() domain.Contribution {
	return domain.Contribution{
		ID:        testContribution,
		ContactID: testContactID,
		Amount:    "10.00",
		Currency:  "AUD",
		Status:    domain.StatusPending,
	}
}
