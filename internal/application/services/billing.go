package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

// BillingService manages the stored card and schedule of a recurring series.
type BillingService struct {
	recurs   application.RecurRepository
	gateways application.GatewayProvider
	messages application.ErrorMessages
	profiles *ProfileBuilder
	events   application.EventPublisher
	metrics  application.MetricsRecorder
	timeout  time.Duration
	mutators []CustomerMutator
	logger   *slog.Logger
}

func NewBillingService(
	recurs application.RecurRepository,
	gateways application.GatewayProvider,
	messages application.ErrorMessages,
	profiles *ProfileBuilder,
	events application.EventPublisher,
	metrics application.MetricsRecorder,
	timeout time.Duration,
	logger *slog.Logger,
	mutators ...CustomerMutator,
) *BillingService {
	return &BillingService{
		recurs:   recurs,
		gateways: gateways,
		messages: messages,
		profiles: profiles,
		events:   events,
		metrics:  metrics,
		timeout:  timeout,
		mutators: mutators,
		logger:   logger,
	}
}

// UpdateBilling replaces the token customer's billing details at the gateway. A failed
// series recovers to In Progress and the failure counter is reset on every success.
func (s *BillingService) UpdateBilling(ctx context.Context, cmd UpdateBillingCommand, params domain.PaymentParams) (*domain.GatewayResponse, error) {
	recur, err := s.recurs.FindByProcessorToken(ctx, cmd.ProcessorID, cmd.SubscriptionToken)
	if err != nil {
		return nil, err
	}
	if err := recur.GuardBillingMutation(); err != nil {
		s.logger.Warn("billing update refused",
			"recur_id", recur.ID,
			"status", recur.Status)
		return nil, err
	}

	params.SubscriptionID = cmd.SubscriptionToken
	params.PaymentProcessorID = cmd.ProcessorID
	profile, err := s.profiles.Build(ctx, params)
	if err != nil {
		return nil, err
	}

	for _, mutate := range s.mutators {
		profile = mutate(profile)
	}

	client, err := clientFor(ctx, s.gateways, s.messages, cmd.ProcessorID)
	if err != nil {
		s.logger.Error("gateway client unavailable",
			"recur_id", recur.ID,
			"processor_id", cmd.ProcessorID,
			"error", err)
		return nil, err
	}

	resp, err := callGateway(ctx, s.timeout, s.metrics, "update_customer",
		func(ctx context.Context) (*domain.GatewayResponse, error) {
			return client.UpdateCustomer(ctx, profile)
		}, responseRejected)
	if err != nil {
		s.logger.Error("customer update failed",
			"recur_id", recur.ID,
			"error", err)
		return nil, err
	}
	if errs := mapMessages(s.messages, resp.ErrorCodes); len(errs) > 0 {
		s.logger.Warn("gateway rejected customer update",
			"recur_id", recur.ID,
			"codes", resp.ErrorCodes)
		return nil, domain.NewGatewayRejectedError(errs)
	}

	previous := recur.ApplyBillingUpdate()
	if err := s.recurs.Update(ctx, recur); err != nil {
		return nil, application.NewInternalError(err)
	}
	s.recordChange(ctx, recur, previous)

	s.logger.Info("billing details updated",
		"recur_id", recur.ID,
		"status", recur.Status)

	return resp, nil
}

// ChangeSchedule moves the next charge date. The gateway holds no schedule, so nothing is sent.
func (s *BillingService) ChangeSchedule(ctx context.Context, cmd ChangeScheduleCommand) (*domain.ContributionRecur, error) {
	if cmd.NextScheduledDate.IsZero() {
		return nil, domain.NewValidationError("next scheduled date is required")
	}

	recur, err := s.recurs.FindByProcessorToken(ctx, cmd.ProcessorID, cmd.SubscriptionToken)
	if err != nil {
		return nil, err
	}
	if err := recur.Reschedule(cmd.NextScheduledDate); err != nil {
		return nil, err
	}
	if err := s.recurs.Update(ctx, recur); err != nil {
		return nil, application.NewInternalError(err)
	}

	s.logger.Info("recurring schedule changed",
		"recur_id", recur.ID,
		"next_scheduled_date", cmd.NextScheduledDate)
	return recur, nil
}

// Cancel ends the series locally; the token customer stays at the gateway.
func (s *BillingService) Cancel(ctx context.Context, cmd CancelSubscriptionCommand) (*domain.ContributionRecur, error) {
	recur, err := s.recurs.FindByProcessorToken(ctx, cmd.ProcessorID, cmd.SubscriptionToken)
	if err != nil {
		return nil, err
	}

	previous := recur.Status
	if err := recur.Cancel(); err != nil {
		return nil, err
	}
	if err := s.recurs.Update(ctx, recur); err != nil {
		return nil, application.NewInternalError(err)
	}
	s.recordChange(ctx, recur, previous)

	s.logger.Info("recurring contribution cancelled", "recur_id", recur.ID)
	return recur, nil
}

func (s *BillingService) recordChange(ctx context.Context, recur *domain.ContributionRecur, previous domain.ContributionStatus) {
	if previous == recur.Status {
		return
	}
	s.metrics.StatusTransition(domain.EntityContributionRecur, recur.Status)
	publish(ctx, s.events, s.logger, statusChange(domain.EntityContributionRecur, recur.ID, previous, recur.Status, ""))
}
