package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/application/services"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

// Confirmer applies the gateway outcome of one hosted page transaction.
type Confirmer interface {
	Confirm(ctx context.Context, cmd services.ConfirmCommand) (*domain.ConfirmationResult, error)
}

// PendingConfirmationWorker finalizes access codes whose payer never came back through
// the verification endpoint.
type PendingConfirmationWorker struct {
	accessCodes application.AccessCodeRepository
	confirmer   Confirmer
	interval    time.Duration
	pendingAge  time.Duration
	abandonAge  time.Duration
	batchSize   int
	logger      *slog.Logger
	now         func() time.Time
}

func NewPendingConfirmationWorker(
	accessCodes application.AccessCodeRepository,
	confirmer Confirmer,
	interval time.Duration,
	pendingAge time.Duration,
	abandonAge time.Duration,
	batchSize int,
	logger *slog.Logger,
) *PendingConfirmationWorker {
	return &PendingConfirmationWorker{
		accessCodes: accessCodes,
		confirmer:   confirmer,
		interval:    interval,
		pendingAge:  pendingAge,
		abandonAge:  abandonAge,
		batchSize:   batchSize,
		logger:      logger,
		now:         time.Now,
	}
}

func (w *PendingConfirmationWorker) Start(ctx context.Context) {
	w.logger.Info("pending confirmation worker started",
		"interval", w.interval,
		"pending_age", w.pendingAge,
		"abandon_age", w.abandonAge,
	)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("pending confirmation worker stopping")
			return
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				w.logger.Error("pending confirmation sweep failed", "error", err)
			}
		}
	}
}

// ProcessPending runs one sweep and returns how many access codes were finalized with a
// gateway outcome. Abandoned codes are closed but not counted.
func (w *PendingConfirmationWorker) ProcessPending(ctx context.Context) (int, error) {
	now := w.now()
	cutoff := now.Add(-w.pendingAge)
	var abandonBefore time.Time
	if w.abandonAge > 0 {
		abandonBefore = now.Add(-w.abandonAge)
	}

	records, err := w.accessCodes.FindUnfinalized(ctx, cutoff, w.batchSize)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	w.logger.Info("found unconfirmed access codes", "count", len(records))

	finalized := 0
	for _, record := range records {
		if ctx.Err() != nil {
			return finalized, ctx.Err()
		}

		result, err := w.confirmer.Confirm(ctx, services.ConfirmCommand{
			AccessCode:    record.AccessCode,
			ProcessorID:   record.PaymentProcessorID,
			Background:    true,
			AbandonBefore: abandonBefore,
		})
		switch {
		case err == nil:
			finalized++
			w.logger.Info("access code finalized",
				"access_code", record.AccessCode,
				"contribution_id", result.ContributionID,
				"status", result.Status,
			)
		case errors.Is(err, domain.ErrTransactionAbandoned):
			w.logger.Warn("access code abandoned on the hosted page",
				"access_code", record.AccessCode,
				"contribution_id", record.ContributionID,
				"created_at", record.CreatedAt,
			)
		case errors.Is(err, domain.ErrTransactionIncomplete):
			w.logger.Debug("payer has not finished the hosted page", "access_code", record.AccessCode)
		case errors.Is(err, domain.ErrAlreadyFinalized):
			w.logger.Debug("access code already finalized", "access_code", record.AccessCode)
		default:
			w.logger.Error("failed to finalize access code",
				"access_code", record.AccessCode,
				"contribution_id", record.ContributionID,
				"category", application.CategorizeError(err),
				"error", err,
			)
		}
	}

	return finalized, nil
}
