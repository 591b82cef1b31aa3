package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/application/mocks"
	"github.com/DanielPopoola/eway-recurring/internal/application/services"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/DanielPopoola/eway-recurring/internal/infrastructure/eway"
	"github.com/DanielPopoola/eway-recurring/internal/infrastructure/lock"
	"github.com/DanielPopoola/eway-recurring/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const processorID int64 = 3

type fixture struct {
	store   *mocks.Store
	gateway *mocks.MockGatewayClient
	worker  *worker.PendingConfirmationWorker
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, 10, 24*time.Hour)
}

func newFixtureWith(t *testing.T, batchSize int, abandonAge time.Duration) *fixture {
	store := mocks.NewStore()
	gateway := mocks.NewMockGatewayClient(t)
	gateway.On("Errors").Return(nil).Maybe()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	confirm := services.NewConfirmService(
		store.AccessCodes(),
		store.Contributions(),
		store,
		lock.NewMemoryLocker(),
		&mocks.StaticGateways{Clients: map[int64]application.GatewayClient{processorID: gateway}},
		eway.NewMessageTable(nil),
		&mocks.EventRecorder{},
		mocks.NopMetrics{},
		time.Second,
		logger,
	)

	return &fixture{
		store:   store,
		gateway: gateway,
		worker: worker.NewPendingConfirmationWorker(
			store.AccessCodes(), confirm, time.Minute, 30*time.Minute, abandonAge, batchSize, logger,
		),
	}
}

func (f *fixture) seed(id int64, accessCode string, age time.Duration) {
	f.store.PutContribution(domain.Contribution{
		ID:        id,
		ContactID: 9,
		InvoiceID: "inv-" + accessCode,
		Amount:    "25.00",
		Currency:  "AUD",
		Status:    domain.StatusPending,
	})
	f.store.PutAccessCode(domain.AccessCodeRecord{
		AccessCode:         accessCode,
		ContributionID:     id,
		PaymentProcessorID: processorID,
		CreatedAt:          time.Now().Add(-age),
	})
}

func TestPendingConfirmationWorker_FinalizesStaleAccessCodes(t *testing.T) {
	f := newFixture(t)
	f.seed(1, "stale-approved", time.Hour)
	f.seed(2, "stale-declined", 2*time.Hour)
	f.seed(3, "fresh", time.Minute)

	f.gateway.On("QueryTransaction", mock.Anything, "stale-approved").Return(&domain.TransactionResult{
		AccessCode:    "stale-approved",
		TransactionID: "9001",
		Succeeded:     true,
		ResponseCodes: []string{"A2000"},
	}, nil).Once()
	f.gateway.On("QueryTransaction", mock.Anything, "stale-declined").Return(&domain.TransactionResult{
		AccessCode:    "stale-declined",
		TransactionID: "9002",
		ResponseCodes: []string{"D4451"},
	}, nil).Once()

	finalized, err := f.worker.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, finalized)

	assert.Equal(t, domain.StatusCompleted, f.store.Contribution(1).Status)
	assert.Equal(t, domain.StatusFailed, f.store.Contribution(2).Status)
	assert.Equal(t, domain.StatusPending, f.store.Contribution(3).Status)

	record, ok := f.store.AccessCode("fresh")
	require.True(t, ok)
	assert.False(t, record.IsFinalized())
}

func TestPendingConfirmationWorker_LeavesUnfinishedPaymentsAlone(t *testing.T) {
	f := newFixture(t)
	f.seed(1, "still-on-page", time.Hour)

	f.gateway.On("QueryTransaction", mock.Anything, "still-on-page").Return(&domain.TransactionResult{
		AccessCode:    "still-on-page",
		ResponseCodes: []string{"S5099"},
	}, nil).Once()

	finalized, err := f.worker.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, finalized)

	assert.Equal(t, domain.StatusPending, f.store.Contribution(1).Status)
	record, _ := f.store.AccessCode("still-on-page")
	assert.False(t, record.IsFinalized())
	assert.NotNil(t, record.LastCheckedAt)
}

func unfinished(accessCode string) *domain.TransactionResult {
	return &domain.TransactionResult{AccessCode: accessCode, ResponseCodes: []string{"S5099"}}
}

func approvedResult(accessCode, transactionID string) *domain.TransactionResult {
	return &domain.TransactionResult{
		AccessCode:    accessCode,
		TransactionID: transactionID,
		Succeeded:     true,
		ResponseCodes: []string{"A2000"},
	}
}

func TestPendingConfirmationWorker_UnfinishedCodeDoesNotStarveNewerPayments(t *testing.T) {
	f := newFixtureWith(t, 1, 24*time.Hour)
	f.seed(1, "abandoned", 3*time.Hour)
	f.seed(2, "approved", time.Hour)

	f.gateway.On("QueryTransaction", mock.Anything, "abandoned").Return(unfinished("abandoned"), nil)
	f.gateway.On("QueryTransaction", mock.Anything, "approved").Return(approvedResult("approved", "9010"), nil).Once()

	finalized, err := f.worker.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, finalized)

	finalized, err = f.worker.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, finalized)

	assert.Equal(t, domain.StatusCompleted, f.store.Contribution(2).Status)
	assert.Equal(t, domain.StatusPending, f.store.Contribution(1).Status)
	record, _ := f.store.AccessCode("abandoned")
	assert.False(t, record.IsFinalized())
}

func TestPendingConfirmationWorker_AbandonsExpiredCodes(t *testing.T) {
	f := newFixtureWith(t, 1, 2*time.Hour)
	f.seed(1, "abandoned", 3*time.Hour)
	f.seed(2, "approved", time.Hour)

	f.gateway.On("QueryTransaction", mock.Anything, "abandoned").Return(unfinished("abandoned"), nil).Once()
	f.gateway.On("QueryTransaction", mock.Anything, "approved").Return(approvedResult("approved", "9011"), nil).Once()

	finalized, err := f.worker.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, finalized, "abandoned codes are closed without an outcome")

	record, _ := f.store.AccessCode("abandoned")
	assert.True(t, record.IsFinalized())
	assert.Equal(t, domain.StatusPending, f.store.Contribution(1).Status)

	finalized, err = f.worker.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, finalized)
	assert.Equal(t, domain.StatusCompleted, f.store.Contribution(2).Status)
}

func TestPendingConfirmationWorker_ClosesCodesOfFinalContributions(t *testing.T) {
	f := newFixtureWith(t, 1, 24*time.Hour)
	f.seed(1, "already-paid", 3*time.Hour)
	f.seed(2, "approved", time.Hour)

	paid := f.store.Contribution(1)
	paid.Status = domain.StatusCompleted
	f.store.PutContribution(paid)

	f.gateway.On("QueryTransaction", mock.Anything, "approved").Return(approvedResult("approved", "9012"), nil).Once()

	finalized, err := f.worker.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, finalized)

	record, _ := f.store.AccessCode("already-paid")
	assert.True(t, record.IsFinalized())
	f.gateway.AssertNotCalled(t, "QueryTransaction", mock.Anything, "already-paid")

	finalized, err = f.worker.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, finalized)
	assert.Equal(t, domain.StatusCompleted, f.store.Contribution(2).Status)
}

func TestPendingConfirmationWorker_ContinuesAfterGatewayFailure(t *testing.T) {
	f := newFixture(t)
	f.seed(1, "broken", time.Hour)
	f.seed(2, "healthy", time.Hour)

	f.gateway.On("QueryTransaction", mock.Anything, "broken").
		Return(nil, domain.NewTransportError("gateway unreachable", errors.New("connection refused"))).Once()
	f.gateway.On("QueryTransaction", mock.Anything, "healthy").Return(&domain.TransactionResult{
		AccessCode:    "healthy",
		TransactionID: "9003",
		Succeeded:     true,
	}, nil).Once()

	finalized, err := f.worker.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, finalized)

	assert.Equal(t, domain.StatusPending, f.store.Contribution(1).Status)
	assert.Equal(t, domain.StatusCompleted, f.store.Contribution(2).Status)
}

func TestPendingConfirmationWorker_NothingToDo(t *testing.T) {
	f := newFixture(t)

	finalized, err := f.worker.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, finalized)
}

func TestPendingConfirmationWorker_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.worker.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
