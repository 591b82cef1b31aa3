package postgres

import (
	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

// toDomainContribution maps db model to domain entity
func toDomainContribution(m ContributionModel) *domain.Contribution {
	c := &domain.Contribution{
		ID:                  m.ID,
		ContactID:           m.ContactID,
		Amount:              m.Amount,
		Currency:            m.Currency,
		Status:              domain.ContributionStatus(m.Status),
		TransactionID:       m.TransactionID,
		ContributionRecurID: m.ContributionRecurID,
		IsTest:              m.IsTest,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.InvoiceID != nil {
		c.InvoiceID = *m.InvoiceID
	}
	return c
}

func toDomainRecur(m ContributionRecurModel) *domain.ContributionRecur {
	return &domain.ContributionRecur{
		ID:                         m.ID,
		ContactID:                  m.ContactID,
		PaymentProcessorID:         m.PaymentProcessorID,
		ProcessorSubscriptionToken: m.ProcessorSubscriptionToken,
		Status:                     domain.ContributionStatus(m.Status),
		FailureCount:               m.FailureCount,
		NextScheduledDate:          m.NextScheduledDate,
		Amount:                     m.Amount,
		UpdatedAt:                  m.UpdatedAt,
	}
}

func toDomainAccessCode(m AccessCodeModel) *domain.AccessCodeRecord {
	return &domain.AccessCodeRecord{
		AccessCode:         m.AccessCode,
		ContributionID:     m.ContributionID,
		PaymentProcessorID: m.PaymentProcessorID,
		CreatedAt:          m.CreatedAt,
		FinalizedAt:        m.FinalizedAt,
		LastCheckedAt:      m.LastCheckedAt,
	}
}

func toDomainProcessor(m PaymentProcessorModel) *domain.PaymentProcessor {
	return &domain.PaymentProcessor{
		ID:          m.ID,
		Name:        m.Name,
		APIKey:      m.APIKey,
		APIPassword: m.APIPassword,
		IsTest:      m.IsTest,
		IsActive:    m.IsActive,
	}
}
