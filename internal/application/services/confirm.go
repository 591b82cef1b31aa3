package services

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/google/uuid"
)

// incompleteResponseCode is reported while the payer is still on the hosted page.
const incompleteResponseCode = "S5099"

type ConfirmService struct {
	accessCodes   application.AccessCodeRepository
	contributions application.ContributionRepository
	txManager     application.TransactionManager
	locker        application.ConfirmationLocker
	gateways      application.GatewayProvider
	messages      application.ErrorMessages
	events        application.EventPublisher
	metrics       application.MetricsRecorder
	timeout       time.Duration
	logger        *slog.Logger
}

func NewConfirmService(
	accessCodes application.AccessCodeRepository,
	contributions application.ContributionRepository,
	txManager application.TransactionManager,
	locker application.ConfirmationLocker,
	gateways application.GatewayProvider,
	messages application.ErrorMessages,
	events application.EventPublisher,
	metrics application.MetricsRecorder,
	timeout time.Duration,
	logger *slog.Logger,
) *ConfirmService {
	return &ConfirmService{
		accessCodes:   accessCodes,
		contributions: contributions,
		txManager:     txManager,
		locker:        locker,
		gateways:      gateways,
		messages:      messages,
		events:        events,
		metrics:       metrics,
		timeout:       timeout,
		logger:        logger,
	}
}

// Confirm asks the gateway for the outcome of a hosted page transaction and applies it
// to the contribution exactly once. A repeated call fails with an already-finalized error
// and changes nothing.
func (s *ConfirmService) Confirm(ctx context.Context, cmd ConfirmCommand) (*domain.ConfirmationResult, error) {
	if cmd.AccessCode == "" {
		return nil, domain.NewValidationError("access code is required")
	}

	release, err := s.locker.Acquire(ctx, cmd.AccessCode)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	defer release()

	record, err := s.accessCodes.FindByAccessCode(ctx, cmd.AccessCode)
	if err != nil {
		return nil, err
	}
	if cmd.ProcessorID != 0 && cmd.ProcessorID != record.PaymentProcessorID {
		return nil, domain.NewUnknownAccessCodeError(cmd.AccessCode)
	}
	if record.IsFinalized() {
		return nil, domain.NewAlreadyFinalizedError(record.ContributionID)
	}

	contribution, err := s.contributions.FindByID(ctx, record.ContributionID)
	if err != nil {
		return nil, err
	}
	if cmd.InvoiceID != "" && cmd.InvoiceID != contribution.InvoiceID {
		return nil, domain.NewUnknownAccessCodeError(cmd.AccessCode)
	}
	if contribution.IsFinal() {
		return nil, s.closeFinalized(ctx, cmd.AccessCode, contribution)
	}

	client, err := clientFor(ctx, s.gateways, s.messages, record.PaymentProcessorID)
	if err != nil {
		s.logger.Error("gateway client unavailable",
			"access_code", cmd.AccessCode,
			"processor_id", record.PaymentProcessorID,
			"error", err)
		return nil, err
	}

	outcome, err := callGateway(ctx, s.timeout, s.metrics, "query_transaction",
		func(ctx context.Context) (*domain.TransactionResult, error) {
			return client.QueryTransaction(ctx, cmd.AccessCode)
		},
		func(r *domain.TransactionResult) bool { return !r.Succeeded })
	if err != nil {
		s.logger.Error("transaction query failed",
			"access_code", cmd.AccessCode,
			"contribution_id", record.ContributionID,
			"error", err)
		return nil, err
	}

	if cmd.Background && isIncomplete(outcome) {
		return nil, s.leaveIncomplete(ctx, cmd, record)
	}

	result := &domain.ConfirmationResult{
		ContributionID: record.ContributionID,
		TransactionID:  outcome.TransactionID,
		Succeeded:      outcome.Succeeded && len(outcome.ErrorCodes) == 0,
	}
	if errs := mapMessages(s.messages, outcome.ErrorCodes); len(errs) > 0 {
		result.Messages = errs
	} else {
		result.Messages = mapMessages(s.messages, outcome.ResponseCodes)
	}

	var (
		changes      []domain.StatusChange
		alreadyFinal bool
	)
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, repos application.TxRepositories) error {
		finalized, err := repos.AccessCodes.MarkFinalized(ctx, cmd.AccessCode, time.Now())
		if err != nil {
			return err
		}
		if !finalized {
			return domain.NewAlreadyFinalizedError(record.ContributionID)
		}

		current, err := repos.Contributions.FindByID(ctx, record.ContributionID)
		if err != nil {
			return err
		}
		if current.IsFinal() {
			// Keep the access code finalized so it is not picked up again.
			alreadyFinal = true
			return nil
		}

		previous := current.Status
		if result.Succeeded {
			err = current.Complete(outcome.TransactionID)
		} else {
			err = current.Fail(outcome.TransactionID)
		}
		if err != nil {
			return err
		}
		if err := repos.Contributions.Update(ctx, current); err != nil {
			return err
		}
		result.Status = current.Status
		changes = append(changes, statusChange(domain.EntityContribution, current.ID, previous, current.Status, outcome.TransactionID))

		if result.Succeeded && current.ContributionRecurID != nil {
			change, err := activateRecur(ctx, repos.Recurs, *current.ContributionRecurID, outcome.TokenCustomerID)
			if err != nil {
				return err
			}
			if change != nil {
				changes = append(changes, *change)
			}
		}
		return nil
	})
	if err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, application.NewInternalError(err)
	}
	if alreadyFinal {
		return nil, domain.NewAlreadyFinalizedError(record.ContributionID)
	}

	for _, change := range changes {
		s.metrics.StatusTransition(change.Entity, change.To)
		publish(ctx, s.events, s.logger, change)
	}

	s.logger.Info("contribution confirmed",
		"contribution_id", result.ContributionID,
		"status", result.Status,
		"transaction_id", result.TransactionID)

	return result, nil
}

// closeFinalized finalizes an access code whose contribution already has an outcome and
// reports it as already finalized.
func (s *ConfirmService) closeFinalized(ctx context.Context, accessCode string, contribution *domain.Contribution) error {
	if _, err := s.accessCodes.MarkFinalized(ctx, accessCode, time.Now()); err != nil {
		return application.NewInternalError(err)
	}
	s.logger.Warn("access code closed for an already finalized contribution",
		"access_code", accessCode,
		"contribution_id", contribution.ID,
		"status", contribution.Status)
	return domain.NewAlreadyFinalizedError(contribution.ID)
}

// leaveIncomplete handles a background check that found the payer still on the hosted
// page. Old enough codes are abandoned, the rest are moved to the back of the sweep.
func (s *ConfirmService) leaveIncomplete(ctx context.Context, cmd ConfirmCommand, record *domain.AccessCodeRecord) error {
	now := time.Now()
	if !cmd.AbandonBefore.IsZero() && record.CreatedAt.Before(cmd.AbandonBefore) {
		finalized, err := s.accessCodes.MarkFinalized(ctx, cmd.AccessCode, now)
		if err != nil {
			return application.NewInternalError(err)
		}
		if !finalized {
			return domain.NewAlreadyFinalizedError(record.ContributionID)
		}
		return domain.NewTransactionAbandonedError(cmd.AccessCode)
	}

	if err := s.accessCodes.MarkChecked(ctx, cmd.AccessCode, now); err != nil {
		return application.NewInternalError(err)
	}
	return domain.NewTransactionIncompleteError(cmd.AccessCode)
}

func activateRecur(ctx context.Context, recurs application.RecurRepository, recurID int64, token string) (*domain.StatusChange, error) {
	recur, err := recurs.FindByID(ctx, recurID)
	if err != nil {
		return nil, err
	}
	if recur.GuardBillingMutation() != nil {
		return nil, nil
	}
	previous := recur.Activate(token)
	if err := recurs.Update(ctx, recur); err != nil {
		return nil, err
	}
	if previous == recur.Status {
		return nil, nil
	}
	change := statusChange(domain.EntityContributionRecur, recur.ID, previous, recur.Status, "")
	return &change, nil
}

// isIncomplete reports a transaction the payer never submitted on the hosted page.
func isIncomplete(r *domain.TransactionResult) bool {
	if r.Succeeded || len(r.ErrorCodes) > 0 {
		return false
	}
	if slices.Contains(r.ResponseCodes, incompleteResponseCode) {
		return true
	}
	return (r.TransactionID == "" || r.TransactionID == "0") && len(r.ResponseCodes) == 0
}

func statusChange(entity string, id int64, from, to domain.ContributionStatus, transactionID string) domain.StatusChange {
	return domain.StatusChange{
		EventID:       uuid.NewString(),
		Entity:        entity,
		EntityID:      id,
		From:          from,
		To:            to,
		TransactionID: transactionID,
		OccurredAt:    time.Now(),
	}
}
