package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/application/mocks"
	"github.com/DanielPopoola/eway-recurring/internal/application/services"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testToken   = "918273645"
	testRecurID = int64(55)
)

type BillingServiceTestSuite struct {
	suite.Suite
	store   *mocks.Store
	gateway *mocks.MockGatewayClient
	events  *mocks.EventRecorder
}

func TestBillingServiceSuite(t *testing.T) {
	suite.Run(t, new(BillingServiceTestSuite))
}

func (suite *BillingServiceTestSuite) SetupTest() {
	suite.store = mocks.NewStore()
	suite.gateway = mocks.NewMockGatewayClient(suite.T())
	suite.gateway.On("Errors").Return(nil).Maybe()
	suite.events = &mocks.EventRecorder{}
}

func (suite *BillingServiceTestSuite) putRecur(status domain.ContributionStatus, failures int) {
	suite.store.PutRecur(domain.ContributionRecur{
		ID:                         testRecurID,
		ContactID:                  testContactID,
		PaymentProcessorID:         testProcessorID,
		ProcessorSubscriptionToken: testToken,
		Status:                     status,
		FailureCount:               failures,
		Amount:                     "25.00",
	})
}

func (suite *BillingServiceTestSuite) newService(mutators ...services.CustomerMutator) *services.BillingService {
	return services.NewBillingService(
		suite.store.Recurs(),
		&mocks.StaticGateways{Clients: map[int64]application.GatewayClient{testProcessorID: suite.gateway}},
		testMessages(),
		testProfiles(),
		suite.events,
		mocks.NopMetrics{},
		time.Second,
		discardLogger(),
		mutators...,
	)
}

func updateCmd() services.UpdateBillingCommand {
	return services.UpdateBillingCommand{ProcessorID: testProcessorID, SubscriptionToken: testToken}
}

func (suite *BillingServiceTestSuite) Test_UpdateBilling_RecoversFailedSeries() {
	t := suite.T()
	suite.putRecur(domain.StatusFailed, 3)
	suite.gateway.On("UpdateCustomer", mock.Anything, mock.MatchedBy(func(p domain.CustomerProfile) bool {
		return p.TokenCustomerID == testToken && p.Country == "AU"
	})).Return(&domain.GatewayResponse{TokenCustomerID: testToken}, nil).Once()

	resp, err := suite.newService().UpdateBilling(context.Background(), updateCmd(), defaultParams())

	require.NoError(t, err)
	assert.Equal(t, testToken, resp.TokenCustomerID)
	recur := suite.store.Recur(testRecurID)
	assert.Equal(t, domain.StatusInProgress, recur.Status)
	assert.Equal(t, 0, recur.FailureCount)

	changes := suite.events.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, domain.EntityContributionRecur, changes[0].Entity)
	assert.Equal(t, domain.StatusFailed, changes[0].From)
}

func (suite *BillingServiceTestSuite) Test_UpdateBilling_InProgressResetsFailures() {
	t := suite.T()
	suite.putRecur(domain.StatusInProgress, 2)
	suite.gateway.On("UpdateCustomer", mock.Anything, mock.Anything).
		Return(&domain.GatewayResponse{TokenCustomerID: testToken}, nil).
		Once()

	_, err := suite.newService().UpdateBilling(context.Background(), updateCmd(), defaultParams())

	require.NoError(t, err)
	recur := suite.store.Recur(testRecurID)
	assert.Equal(t, domain.StatusInProgress, recur.Status)
	assert.Equal(t, 0, recur.FailureCount)
	assert.Empty(t, suite.events.Changes())
}

func (suite *BillingServiceTestSuite) Test_UpdateBilling_FinalizedSeriesNeverReachGateway() {
	tests := []struct {
		status  domain.ContributionStatus
		message string
	}{
		{domain.StatusCompleted, "Attempted to update billing details for a completed contribution."},
		{domain.StatusCancelled, "Attempted to update billing details for a cancelled contribution."},
	}

	for _, tt := range tests {
		suite.Run(string(tt.status), func() {
			t := suite.T()
			suite.putRecur(tt.status, 1)

			for _, params := range []domain.PaymentParams{defaultParams(), {}} {
				_, err := suite.newService().UpdateBilling(context.Background(), updateCmd(), params)

				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrFinalizedSubscription)
				assert.Equal(t, tt.message, err.Error())
			}

			suite.gateway.AssertNotCalled(t, "UpdateCustomer", mock.Anything, mock.Anything)
			assert.Equal(t, 1, suite.store.Recur(testRecurID).FailureCount)
		})
	}
}

func (suite *BillingServiceTestSuite) Test_UpdateBilling_RejectedLeavesSeriesUntouched() {
	t := suite.T()
	suite.putRecur(domain.StatusFailed, 4)
	suite.gateway.On("UpdateCustomer", mock.Anything, mock.Anything).
		Return(&domain.GatewayResponse{ErrorCodes: []string{"V6040", "V6053"}}, nil).
		Once()

	_, err := suite.newService().UpdateBilling(context.Background(), updateCmd(), defaultParams())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGatewayRejected)
	assert.Equal(t, "Invalid TokenCustomerID; Invalid Customer CountryCode", err.Error())
	recur := suite.store.Recur(testRecurID)
	assert.Equal(t, domain.StatusFailed, recur.Status)
	assert.Equal(t, 4, recur.FailureCount)
}

func (suite *BillingServiceTestSuite) Test_UpdateBilling_MutatorsApply() {
	t := suite.T()
	suite.putRecur(domain.StatusInProgress, 0)
	uppercase := func(p domain.CustomerProfile) domain.CustomerProfile {
		p.LastName = "LOVELACE"
		return p
	}
	suite.gateway.On("UpdateCustomer", mock.Anything, mock.MatchedBy(func(p domain.CustomerProfile) bool {
		return p.LastName == "LOVELACE"
	})).Return(&domain.GatewayResponse{}, nil).Once()

	_, err := suite.newService(uppercase).UpdateBilling(context.Background(), updateCmd(), defaultParams())

	require.NoError(t, err)
}

func (suite *BillingServiceTestSuite) Test_UpdateBilling_UnknownSubscription() {
	t := suite.T()

	_, err := suite.newService().UpdateBilling(context.Background(), updateCmd(), defaultParams())

	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
	suite.gateway.AssertNotCalled(t, "UpdateCustomer", mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) Test_UpdateBilling_NoDataReturned() {
	t := suite.T()
	suite.putRecur(domain.StatusFailed, 1)
	suite.gateway.On("UpdateCustomer", mock.Anything, mock.Anything).Return(nil, nil).Once()

	_, err := suite.newService().UpdateBilling(context.Background(), updateCmd(), defaultParams())

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, domain.StatusFailed, suite.store.Recur(testRecurID).Status)
}

func (suite *BillingServiceTestSuite) Test_ChangeSchedule() {
	t := suite.T()
	suite.putRecur(domain.StatusInProgress, 0)
	next := time.Date(2027, 1, 15, 9, 0, 0, 0, time.UTC)

	recur, err := suite.newService().ChangeSchedule(context.Background(), services.ChangeScheduleCommand{
		ProcessorID:       testProcessorID,
		SubscriptionToken: testToken,
		NextScheduledDate: next,
	})

	require.NoError(t, err)
	require.NotNil(t, recur.NextScheduledDate)
	assert.True(t, next.Equal(*suite.store.Recur(testRecurID).NextScheduledDate))
}

func (suite *BillingServiceTestSuite) Test_ChangeSchedule_CancelledSeries() {
	t := suite.T()
	suite.putRecur(domain.StatusCancelled, 0)

	_, err := suite.newService().ChangeSchedule(context.Background(), services.ChangeScheduleCommand{
		ProcessorID:       testProcessorID,
		SubscriptionToken: testToken,
		NextScheduledDate: time.Now().Add(24 * time.Hour),
	})

	assert.ErrorIs(t, err, domain.ErrFinalizedSubscription)
}

func (suite *BillingServiceTestSuite) Test_ChangeSchedule_RequiresDate() {
	_, err := suite.newService().ChangeSchedule(context.Background(), services.ChangeScheduleCommand{
		ProcessorID:       testProcessorID,
		SubscriptionToken: testToken,
	})

	assert.ErrorIs(suite.T(), err, domain.ErrValidation)
}

func (suite *BillingServiceTestSuite) Test_Cancel() {
	t := suite.T()
	suite.putRecur(domain.StatusInProgress, 0)
	cmd := services.CancelSubscriptionCommand{ProcessorID: testProcessorID, SubscriptionToken: testToken}

	recur, err := suite.newService().Cancel(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, recur.Status)
	assert.Nil(t, recur.NextScheduledDate)
	assert.Equal(t, domain.StatusCancelled, suite.store.Recur(testRecurID).Status)
	require.Len(t, suite.events.Changes(), 1)

	_, err = suite.newService().Cancel(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrFinalizedSubscription)
}
