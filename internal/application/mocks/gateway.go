package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockGatewayClient is a testify mock of the gateway port.
type MockGatewayClient struct {
	mock.Mock
}

// NewMockGatewayClient registers expectation checks on test cleanup.
func NewMockGatewayClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGatewayClient {
	m := &MockGatewayClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ application.GatewayClient = (*MockGatewayClient)(nil)

func (m *MockGatewayClient) Errors() []string {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.([]string)
	}
	return nil
}

func (m *MockGatewayClient) CreateTransaction(ctx context.Context, req domain.TransactionRequest) (*domain.GatewayResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*domain.GatewayResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGatewayClient) QueryTransaction(ctx context.Context, accessCode string) (*domain.TransactionResult, error) {
	args := m.Called(ctx, accessCode)
	if v := args.Get(0); v != nil {
		return v.(*domain.TransactionResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGatewayClient) UpdateCustomer(ctx context.Context, customer domain.CustomerProfile) (*domain.GatewayResponse, error) {
	args := m.Called(ctx, customer)
	if v := args.Get(0); v != nil {
		return v.(*domain.GatewayResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// StaticGateways hands out fixed clients per processor id.
type StaticGateways struct {
	Clients map[int64]application.GatewayClient
	Err     error
}

func (g *StaticGateways) Client(_ context.Context, processorID int64) (application.GatewayClient, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	client, ok := g.Clients[processorID]
	if !ok {
		return nil, domain.NewProcessorNotFoundError(processorID)
	}
	return client, nil
}

// StaticCountries resolves countries from fixed tables.
type StaticCountries struct {
	BillingTypeID int64
	Codes         map[int64]string
}

func (c *StaticCountries) BillingLocationTypeID(context.Context) (int64, error) {
	return c.BillingTypeID, nil
}

func (c *StaticCountries) ISOCode(_ context.Context, countryID int64) (string, error) {
	return c.Codes[countryID], nil
}

// EventRecorder keeps every published status change.
type EventRecorder struct {
	mu      sync.Mutex
	changes []domain.StatusChange
}

func (r *EventRecorder) Publish(_ context.Context, change domain.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
	return nil
}

func (r *EventRecorder) Changes() []domain.StatusChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.StatusChange(nil), r.changes...)
}

// NopMetrics discards observations.
type NopMetrics struct{}

func (NopMetrics) GatewayCall(string, string, time.Duration) {}
func (NopMetrics) StatusTransition(string, domain.ContributionStatus) {}
