package services_test

import (
	"context"
	"errors"
	"net/url"
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

type SubmitServiceTestSuite struct {
	suite.Suite
	store   *mocks.Store
	gateway *mocks.MockGatewayClient
	events  *mocks.EventRecorder
}

func TestSubmitServiceSuite(t *testing.T) {
	suite.Run(t, new(SubmitServiceTestSuite))
}

func (suite *SubmitServiceTestSuite) SetupTest() {
	suite.store = mocks.NewStore()
	suite.store.PutContribution(pendingContribution())
	suite.gateway = mocks.NewMockGatewayClient(suite.T())
	suite.gateway.On("Errors").Return(nil).Maybe()
	suite.events = &mocks.EventRecorder{}
}

func (suite *SubmitServiceTestSuite) newService(mutators ...services.RequestMutator) *services.SubmitService {
	return services.NewSubmitService(
		suite.store.Contributions(),
		suite.store.AccessCodes(),
		suite.store,
		&mocks.StaticGateways{Clients: map[int64]application.GatewayClient{testProcessorID: suite.gateway}},
		testMessages(),
		testProfiles(),
		services.NewReturnURLs(testPublicBase),
		suite.events,
		mocks.NopMetrics{},
		time.Second,
		discardLogger(),
		mutators...,
	)
}

func accepted(code string) *domain.GatewayResponse {
	return &domain.GatewayResponse{
		AccessCode:       code,
		SharedPaymentURL: "https://secure.ewaypayments.com/sharedpage/" + code,
	}
}

// ============================================================================
// HAPPY PATH TESTS
// ============================================================================

func (suite *SubmitServiceTestSuite) Test_Submit_Success() {
	t := suite.T()
	ctx := context.Background()
	params := defaultParams()

	var sent domain.TransactionRequest
	suite.gateway.On("CreateTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(domain.TransactionRequest) }).
		Return(accepted("AC-1"), nil).
		Once()

	target, err := suite.newService().Submit(ctx, testContribution, params)

	require.NoError(t, err)
	assert.Equal(t, testContribution, target.ContributionID)
	assert.Equal(t, "AC-1", target.AccessCode)
	assert.Equal(t, "https://secure.ewaypayments.com/sharedpage/AC-1", target.URL)

	assert.Equal(t, int64(1000), sent.TotalAmount)
	assert.Equal(t, "a1b2c3d4e5f6", sent.InvoiceNumber)
	assert.Equal(t, params.InvoiceID, sent.InvoiceReference)
	assert.Equal(t, "Annual membership", sent.InvoiceDescription)
	assert.Equal(t, "AU", sent.Customer.Country)
	assert.Equal(t, "203.0.113.9", sent.CustomerIP)
	assert.Equal(t, testContribution, sent.ContributionID)
	assert.True(t, sent.Capture)
	assert.True(t, sent.SaveCustomer)
	assert.True(t, sent.CustomerReadOnly)

	record, ok := suite.store.AccessCode("AC-1")
	require.True(t, ok)
	assert.Equal(t, testContribution, record.ContributionID)
	assert.Equal(t, testProcessorID, record.PaymentProcessorID)
	assert.False(t, record.IsFinalized())

	assert.Equal(t, domain.StatusPending, suite.store.Contribution(testContribution).Status)
}

func (suite *SubmitServiceTestSuite) Test_Submit_BackOfficeReturnURLs() {
	t := suite.T()
	params := defaultParams()

	var sent domain.TransactionRequest
	suite.gateway.On("CreateTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(domain.TransactionRequest) }).
		Return(accepted("AC-2"), nil).
		Once()

	_, err := suite.newService().Submit(context.Background(), testContribution, params)
	require.NoError(t, err)

	redirect, err := url.Parse(sent.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "/civicrm/ewayrecurring/verifypayment", redirect.Path)
	assert.Equal(t, params.InvoiceID, redirect.Query().Get("contributionInvoiceID"))
	assert.Equal(t, "qf-123", redirect.Query().Get("qfKey"))
	assert.Equal(t, "7", redirect.Query().Get("paymentProcessorID"))

	cancel, err := url.Parse(sent.CancelURL)
	require.NoError(t, err)
	assert.Equal(t, "/civicrm/contribution/add", cancel.Path)
	assert.Equal(t, "42", cancel.Query().Get("cid"))
}

func (suite *SubmitServiceTestSuite) Test_Submit_ContributionPageReturnURLs() {
	t := suite.T()
	params := defaultParams()
	params.ContributionPageID = 3
	params.SuccessURL = "https://crm.example.org/thanks"
	params.CancelURL = "https://crm.example.org/donate"

	var sent domain.TransactionRequest
	suite.gateway.On("CreateTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(domain.TransactionRequest) }).
		Return(accepted("AC-3"), nil).
		Once()

	_, err := suite.newService().Submit(context.Background(), testContribution, params)
	require.NoError(t, err)

	assert.Equal(t, "https://crm.example.org/thanks", sent.RedirectURL)
	assert.Equal(t, "https://crm.example.org/donate", sent.CancelURL)
}

func (suite *SubmitServiceTestSuite) Test_Submit_DescriptionFallbackAndTruncation() {
	t := suite.T()

	var sent []domain.TransactionRequest
	suite.gateway.On("CreateTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = append(sent, args.Get(1).(domain.TransactionRequest)) }).
		Return(accepted("AC-4"), nil).
		Once()
	suite.gateway.On("CreateTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = append(sent, args.Get(1).(domain.TransactionRequest)) }).
		Return(accepted("AC-5"), nil).
		Once()

	params := defaultParams()
	params.Description = ""
	_, err := suite.newService().Submit(context.Background(), testContribution, params)
	require.NoError(t, err)

	other := pendingContribution()
	other.ID = 2002
	suite.store.PutContribution(other)
	params = defaultParams()
	params.InvoiceID = "ffff0000ffff0000"
	params.Description = "A very long description that goes well past the sixty four character gateway limit"
	_, err = suite.newService().Submit(context.Background(), 2002, params)
	require.NoError(t, err)

	require.Len(t, sent, 2)
	assert.Equal(t, "Invoice ID: a1b2c3d4e5f6a7b8c9d0", sent[0].InvoiceDescription)
	assert.Len(t, sent[1].InvoiceDescription, domain.InvoiceDescriptionLength)
	assert.Equal(t, params.Description[:64], sent[1].InvoiceDescription)
}

func (suite *SubmitServiceTestSuite) Test_Submit_RecurringMarksPendingBeforeSubmission() {
	t := suite.T()
	contribution := pendingContribution()
	contribution.Status = domain.StatusInProgress
	suite.store.PutContribution(contribution)

	params := defaultParams()
	params.IsRecur = true

	suite.gateway.On("CreateTransaction", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			assert.Equal(t, domain.StatusPending, suite.store.Contribution(testContribution).Status)
		}).
		Return(accepted("AC-6"), nil).
		Once()

	_, err := suite.newService().Submit(context.Background(), testContribution, params)
	require.NoError(t, err)

	changes := suite.events.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, domain.StatusInProgress, changes[0].From)
	assert.Equal(t, domain.StatusPending, changes[0].To)
}

func (suite *SubmitServiceTestSuite) Test_Submit_MutatorsRunInOrder() {
	t := suite.T()

	first := func(req domain.TransactionRequest) domain.TransactionRequest {
		req.InvoiceDescription = "first"
		return req
	}
	second := func(req domain.TransactionRequest) domain.TransactionRequest {
		req.InvoiceDescription += "+second"
		req.TotalAmount = 2500
		return req
	}

	suite.gateway.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(req domain.TransactionRequest) bool {
		return req.InvoiceDescription == "first+second" && req.TotalAmount == 2500
	})).Return(accepted("AC-7"), nil).Once()

	_, err := suite.newService(first, second).Submit(context.Background(), testContribution, defaultParams())
	require.NoError(t, err)
}

// ============================================================================
// DUPLICATE TESTS
// ============================================================================

func (suite *SubmitServiceTestSuite) Test_Submit_TwiceWithSameInvoiceID() {
	t := suite.T()
	ctx := context.Background()
	service := suite.newService()

	suite.gateway.On("CreateTransaction", mock.Anything, mock.Anything).
		Return(accepted("AC-8"), nil).
		Once()

	_, err := service.Submit(ctx, testContribution, defaultParams())
	require.NoError(t, err)

	_, err = service.Submit(ctx, testContribution, defaultParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateSubmission)
	assert.Equal(t, domain.DuplicateSubmissionMessage, err.Error())

	suite.gateway.AssertNumberOfCalls(t, "CreateTransaction", 1)
	assert.Equal(t, 1, suite.store.AccessCodeCount())
}

func (suite *SubmitServiceTestSuite) Test_Submit_InvoiceOwnedByAnotherContribution() {
	t := suite.T()
	other := pendingContribution()
	other.ID = 3003
	other.InvoiceID = defaultParams().InvoiceID
	suite.store.PutContribution(other)

	_, err := suite.newService().Submit(context.Background(), testContribution, defaultParams())

	assert.ErrorIs(t, err, domain.ErrDuplicateSubmission)
	suite.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
}

// ============================================================================
// FAILURE TESTS
// ============================================================================

func (suite *SubmitServiceTestSuite) Test_Submit_GatewayRejectsWithTwoErrors() {
	t := suite.T()
	contribution := pendingContribution()
	contribution.Status = domain.StatusInProgress
	suite.store.PutContribution(contribution)

	suite.gateway.On("CreateTransaction", mock.Anything, mock.Anything).
		Return(&domain.GatewayResponse{ErrorCodes: []string{"V6011", "V6043"}}, nil).
		Once()

	_, err := suite.newService().Submit(context.Background(), testContribution, defaultParams())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGatewayRejected)
	assert.Equal(t, "Invalid Payment TotalAmount; Customer LastName Required", err.Error())

	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, []string{"Invalid Payment TotalAmount", "Customer LastName Required"}, domainErr.Details)

	assert.Equal(t, domain.StatusInProgress, suite.store.Contribution(testContribution).Status)
	assert.Equal(t, 0, suite.store.AccessCodeCount())
}

func (suite *SubmitServiceTestSuite) Test_Submit_NoDataReturned() {
	t := suite.T()
	suite.gateway.On("CreateTransaction", mock.Anything, mock.Anything).Return(nil, nil).Once()

	_, err := suite.newService().Submit(context.Background(), testContribution, defaultParams())

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, "no data returned", err.Error())
}

func (suite *SubmitServiceTestSuite) Test_Submit_TransportFailureKeepsCause() {
	t := suite.T()
	cause := errors.New("connection reset by peer")
	suite.gateway.On("CreateTransaction", mock.Anything, mock.Anything).Return(nil, cause).Once()

	_, err := suite.newService().Submit(context.Background(), testContribution, defaultParams())

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, domain.StatusPending, suite.store.Contribution(testContribution).Status)
}

func (suite *SubmitServiceTestSuite) Test_Submit_TimeoutIsTransportError() {
	t := suite.T()
	suite.gateway.On("CreateTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded).
		Once()

	service := services.NewSubmitService(
		suite.store.Contributions(),
		suite.store.AccessCodes(),
		suite.store,
		&mocks.StaticGateways{Clients: map[int64]application.GatewayClient{testProcessorID: suite.gateway}},
		testMessages(),
		testProfiles(),
		services.NewReturnURLs(testPublicBase),
		suite.events,
		mocks.NopMetrics{},
		20*time.Millisecond,
		discardLogger(),
	)

	_, err := service.Submit(context.Background(), testContribution, defaultParams())

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func (suite *SubmitServiceTestSuite) Test_Submit_ClientInitErrorSkipsNetwork() {
	t := suite.T()
	broken := mocks.NewMockGatewayClient(t)
	broken.On("Errors").Return([]string{"S9991"})

	service := services.NewSubmitService(
		suite.store.Contributions(),
		suite.store.AccessCodes(),
		suite.store,
		&mocks.StaticGateways{Clients: map[int64]application.GatewayClient{testProcessorID: broken}},
		testMessages(),
		testProfiles(),
		services.NewReturnURLs(testPublicBase),
		suite.events,
		mocks.NopMetrics{},
		time.Second,
		discardLogger(),
	)

	_, err := service.Submit(context.Background(), testContribution, defaultParams())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrClientInit)
	assert.Contains(t, err.Error(), "Library does not have API Key or API Password or are invalid")
	broken.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
}

func (suite *SubmitServiceTestSuite) Test_Submit_MissingCountrySkipsNetwork() {
	t := suite.T()
	params := defaultParams()
	params.CountryID = 0

	_, err := suite.newService().Submit(context.Background(), testContribution, params)

	assert.ErrorIs(t, err, domain.ErrValidation)
	suite.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
}

func (suite *SubmitServiceTestSuite) Test_Submit_InvalidAmount() {
	t := suite.T()
	params := defaultParams()
	params.Amount = "ten dollars"

	_, err := suite.newService().Submit(context.Background(), testContribution, params)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func (suite *SubmitServiceTestSuite) Test_Submit_UnknownContribution() {
	_, err := suite.newService().Submit(context.Background(), 9999, defaultParams())

	assert.ErrorIs(suite.T(), err, domain.ErrContributionNotFound)
}

func (suite *SubmitServiceTestSuite) Test_Submit_FinalContributionIsRejected() {
	for _, status := range []domain.ContributionStatus{domain.StatusCompleted, domain.StatusFailed, domain.StatusCancelled} {
		suite.Run(string(status), func() {
			t := suite.T()
			contribution := pendingContribution()
			contribution.Status = status
			contribution.InvoiceID = "old-invoice"
			suite.store.PutContribution(contribution)

			params := defaultParams()
			params.InvoiceID = "fresh-invoice"

			target, err := suite.newService().Submit(context.Background(), testContribution, params)

			assert.Nil(t, target)
			assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
			suite.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
			assert.Zero(t, suite.store.AccessCodeCount())
			assert.Equal(t, "old-invoice", suite.store.Contribution(testContribution).InvoiceID)
		})
	}
}
