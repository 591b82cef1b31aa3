package services

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

type SubmitService struct {
	contributions application.ContributionRepository
	accessCodes   application.AccessCodeRepository
	duplicates    application.DuplicateChecker
	gateways      application.GatewayProvider
	messages      application.ErrorMessages
	profiles      *ProfileBuilder
	returnURLs    ReturnURLs
	events        application.EventPublisher
	metrics       application.MetricsRecorder
	timeout       time.Duration
	mutators      []RequestMutator
	logger        *slog.Logger
}

func NewSubmitService(
	contributions application.ContributionRepository,
	accessCodes application.AccessCodeRepository,
	duplicates application.DuplicateChecker,
	gateways application.GatewayProvider,
	messages application.ErrorMessages,
	profiles *ProfileBuilder,
	returnURLs ReturnURLs,
	events application.EventPublisher,
	metrics application.MetricsRecorder,
	timeout time.Duration,
	logger *slog.Logger,
	mutators ...RequestMutator,
) *SubmitService {
	return &SubmitService{
		contributions: contributions,
		accessCodes:   accessCodes,
		duplicates:    duplicates,
		gateways:      gateways,
		messages:      messages,
		profiles:      profiles,
		returnURLs:    returnURLs,
		events:        events,
		metrics:       metrics,
		timeout:       timeout,
		mutators:      mutators,
		logger:        logger,
	}
}

// Submit sends a contribution to the hosted payment page and returns where to redirect
// the payer. The contribution stays non-final until the payer comes back and the
// transaction is confirmed.
func (s *SubmitService) Submit(ctx context.Context, contributionID int64, params domain.PaymentParams) (*domain.RedirectTarget, error) {
	contribution, err := s.contributions.FindByID(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	if contribution.IsFinal() {
		return nil, domain.NewAlreadyFinalizedError(contribution.ID)
	}

	if params.InvoiceID == "" {
		params.InvoiceID = contribution.InvoiceID
	}
	if params.InvoiceID == "" {
		return nil, domain.NewValidationError("invoice id is required")
	}
	if params.Amount == "" {
		params.Amount = contribution.Amount
	}
	params.ContributionID = contributionID

	amount, err := domain.ToMinorUnits(params.Amount)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Build(ctx, params)
	if err != nil {
		return nil, err
	}

	req := domain.TransactionRequest{
		Customer:           profile,
		TotalAmount:        amount,
		InvoiceNumber:      truncate(params.InvoiceID, domain.InvoiceNumberLength),
		InvoiceDescription: invoiceDescription(params),
		InvoiceReference:   params.InvoiceID,
		RedirectURL:        s.returnURLs.Success(params),
		CancelURL:          s.returnURLs.Cancel(params),
		CustomerIP:         params.IPAddress,
		Capture:            true,
		SaveCustomer:       true,
		CustomerReadOnly:   true,
		ContributionID:     contributionID,
	}

	if params.IsRecur {
		if err := s.markPending(ctx, contribution); err != nil {
			return nil, err
		}
	}

	for _, mutate := range s.mutators {
		req = mutate(req)
	}

	client, err := clientFor(ctx, s.gateways, s.messages, params.PaymentProcessorID)
	if err != nil {
		s.logger.Error("gateway client unavailable",
			"contribution_id", contributionID,
			"processor_id", params.PaymentProcessorID,
			"error", err)
		return nil, err
	}

	if err := s.duplicates.ClaimInvoice(ctx, params.InvoiceID, contributionID); err != nil {
		return nil, err
	}

	resp, err := callGateway(ctx, s.timeout, s.metrics, "create_transaction",
		func(ctx context.Context) (*domain.GatewayResponse, error) {
			return client.CreateTransaction(ctx, req)
		}, responseRejected)
	if err != nil {
		s.logger.Error("transaction submission failed",
			"contribution_id", contributionID,
			"invoice_id", params.InvoiceID,
			"error", err)
		return nil, err
	}

	if errs := mapMessages(s.messages, resp.ErrorCodes); len(errs) > 0 {
		s.logger.Warn("gateway rejected transaction",
			"contribution_id", contributionID,
			"codes", resp.ErrorCodes)
		return nil, domain.NewGatewayRejectedError(errs)
	}
	if resp.AccessCode == "" || resp.SharedPaymentURL == "" {
		return nil, domain.NewTransportError("no data returned", nil)
	}

	record := &domain.AccessCodeRecord{
		AccessCode:         resp.AccessCode,
		ContributionID:     contributionID,
		PaymentProcessorID: params.PaymentProcessorID,
		CreatedAt:          time.Now(),
	}
	if err := s.accessCodes.Create(ctx, record); err != nil {
		return nil, application.NewInternalError(err)
	}

	s.logger.Info("redirecting payer to hosted payment page",
		"contribution_id", contributionID,
		"invoice_id", params.InvoiceID)

	return &domain.RedirectTarget{
		ContributionID: contributionID,
		AccessCode:     resp.AccessCode,
		URL:            resp.SharedPaymentURL,
	}, nil
}

func (s *SubmitService) markPending(ctx context.Context, contribution *domain.Contribution) error {
	previous := contribution.Status
	if err := contribution.MarkPending(); err != nil {
		return err
	}
	if previous == contribution.Status {
		return nil
	}
	if err := s.contributions.Update(ctx, contribution); err != nil {
		return application.NewInternalError(err)
	}

	s.metrics.StatusTransition(domain.EntityContribution, contribution.Status)
	publish(ctx, s.events, s.logger, statusChange(domain.EntityContribution, contribution.ID, previous, contribution.Status, ""))
	return nil
}

func invoiceDescription(params domain.PaymentParams) string {
	description := strings.TrimSpace(params.Description)
	if description == "" {
		description = "Invoice ID: " + params.InvoiceID
	}
	return truncate(description, domain.InvoiceDescriptionLength)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// publish never fails the caller; the status change is already committed.
func publish(ctx context.Context, events application.EventPublisher, logger *slog.Logger, change domain.StatusChange) {
	if err := events.Publish(ctx, change); err != nil {
		logger.Warn("failed to publish status change",
			"entity", change.Entity,
			"entity_id", strconv.FormatInt(change.EntityID, 10),
			"to", change.To,
			"error", err)
	}
}
