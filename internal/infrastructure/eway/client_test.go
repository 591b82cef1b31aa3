package eway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/config"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Credentials{APIKey: "key", APIPassword: "secret"}, Sandbox, config.GatewayConfig{
		Timeout:       2 * time.Second,
		SandboxURL:    server.URL,
		ProductionURL: "https://api.ewaypayments.com",
	})
}

func TestNewClient(t *testing.T) {
	cfg := config.GatewayConfig{
		Timeout:       time.Second,
		SandboxURL:    "https://api.sandbox.ewaypayments.com",
		ProductionURL: "https://api.ewaypayments.com",
	}

	t.Run("valid client has no errors", func(t *testing.T) {
		client := NewClient(Credentials{APIKey: "k", APIPassword: "p"}, Production, cfg)

		assert.Empty(t, client.Errors())
		assert.Equal(t, cfg.ProductionURL, client.baseURL)
	})

	t.Run("missing credentials are recorded", func(t *testing.T) {
		client := NewClient(Credentials{APIKey: "k"}, Sandbox, cfg)

		assert.Equal(t, []string{CodeCredentialsMissing}, client.Errors())
	})

	t.Run("unusable endpoint is recorded", func(t *testing.T) {
		client := NewClient(Credentials{APIKey: "k", APIPassword: "p"}, Environment("staging"), cfg)

		assert.Equal(t, []string{CodeEndpointNotInitialised}, client.Errors())
	})

	t.Run("test processors use the sandbox", func(t *testing.T) {
		assert.Equal(t, Sandbox, EnvironmentFor(true))
		assert.Equal(t, Production, EnvironmentFor(false))
	})
}

func TestClient_CreateTransaction(t *testing.T) {
	var got sharedPageRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/AccessCodesShared", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"AccessCode": "AC-123",
			"SharedPaymentUrl": "https://secure-au.sandbox.ewaypayments.com/sharedpage/sharedpayment?AccessCode=AC-123",
			"Customer": {"TokenCustomerID": null},
			"Errors": null
		}`))
	})

	resp, err := client.CreateTransaction(context.Background(), domain.TransactionRequest{
		Customer:           domain.CustomerProfile{FirstName: "Ada", LastName: "Lovelace", Country: "AU"},
		TotalAmount:        1000,
		InvoiceNumber:      "a1b2c3d4e5f6",
		InvoiceDescription: "Annual membership",
		InvoiceReference:   "a1b2c3d4e5f6a7b8",
		RedirectURL:        "https://crm.example.org/return",
		CancelURL:          "https://crm.example.org/cancel",
		CustomerIP:         "203.0.113.9",
		Capture:            true,
		SaveCustomer:       true,
		CustomerReadOnly:   true,
		ContributionID:     1001,
	})

	require.NoError(t, err)
	assert.Equal(t, "AC-123", resp.AccessCode)
	assert.Contains(t, resp.SharedPaymentURL, "AccessCode=AC-123")
	assert.Empty(t, resp.ErrorCodes)

	assert.Equal(t, methodTokenPayment, got.Method)
	assert.Equal(t, transactionTypePurchase, got.TransactionType)
	assert.Equal(t, int64(1000), got.Payment.TotalAmount)
	assert.Equal(t, "AU", got.Customer.Country)
	assert.Equal(t, []option{{Value: "1001"}}, got.Options)
	assert.True(t, got.Capture)
	assert.True(t, got.CustomerReadOnly)
}

func TestClient_CreateTransaction_Errors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"AccessCode": null, "Errors": "V6011, V6043"}`))
	})

	resp, err := client.CreateTransaction(context.Background(), domain.TransactionRequest{SaveCustomer: true, TotalAmount: 5})

	require.NoError(t, err)
	assert.Equal(t, []string{"V6011", "V6043"}, resp.ErrorCodes)
}

func TestClient_AuthenticationFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	resp, err := client.CreateTransaction(context.Background(), domain.TransactionRequest{})

	require.NoError(t, err)
	assert.Equal(t, []string{CodeAuthenticationError}, resp.ErrorCodes)
}

func TestClient_EmptyBodyIsNoData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	resp, err := client.QueryTransaction(context.Background(), "AC-1")

	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestClient_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	})

	_, err := client.UpdateCustomer(context.Background(), domain.CustomerProfile{})

	require.Error(t, err)
	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestClient_QueryTransaction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/AccessCode/AC-9", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"AccessCode": "AC-9",
			"TransactionID": 11223344,
			"TransactionStatus": true,
			"TokenCustomerID": 918273645,
			"ResponseCode": "00",
			"ResponseMessage": "A2000",
			"Errors": null
		}`))
	})

	result, err := client.QueryTransaction(context.Background(), "AC-9")

	require.NoError(t, err)
	assert.True(t, result.Succeeded)
	assert.Equal(t, "11223344", result.TransactionID)
	assert.Equal(t, "918273645", result.TokenCustomerID)
	assert.Equal(t, []string{"A2000"}, result.ResponseCodes)
	assert.Empty(t, result.ErrorCodes)
}

func TestClient_UpdateCustomer(t *testing.T) {
	var got directRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Transaction", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"Customer": {"TokenCustomerID": 918273645}, "Errors": ""}`))
	})

	resp, err := client.UpdateCustomer(context.Background(), domain.CustomerProfile{
		TokenCustomerID: "918273645",
		FirstName:       "Ada",
		Country:         "AU",
	})

	require.NoError(t, err)
	assert.Equal(t, "918273645", resp.TokenCustomerID)
	assert.Empty(t, resp.ErrorCodes)
	assert.Equal(t, methodUpdateTokenCustomer, got.Method)
	assert.Equal(t, "918273645", got.Customer.TokenCustomerID)
}

func TestClient_ContextDeadline(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.QueryTransaction(ctx, "AC-1")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTransactionMethod(t *testing.T) {
	assert.Equal(t, methodProcessPayment, transactionMethod(domain.TransactionRequest{TotalAmount: 100}))
	assert.Equal(t, methodTokenPayment, transactionMethod(domain.TransactionRequest{TotalAmount: 100, SaveCustomer: true}))
	assert.Equal(t, methodCreateTokenCustomer, transactionMethod(domain.TransactionRequest{SaveCustomer: true}))
}

func TestMessageTable(t *testing.T) {
	table := NewMessageTable(map[string]string{"D4451": "Declined: insufficient funds"})

	assert.Equal(t, "Transaction Approved", table.Message("A2000"))
	assert.Equal(t, "Declined: insufficient funds", table.Message("D4451"))
	assert.Equal(t, "X0000", table.Message("X0000"))
	assert.Equal(t, "Insufficient Funds", NewMessageTable(nil).Message("D4451"))
}
