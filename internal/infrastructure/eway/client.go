package eway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/DanielPopoola/eway-recurring/internal/config"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

// Environment selects the Rapid API endpoint.
type Environment string

const (
	Sandbox    Environment = "sandbox"
	Production Environment = "production"
)

// EnvironmentFor picks the sandbox for test processors.
func EnvironmentFor(isTest bool) Environment {
	if isTest {
		return Sandbox
	}
	return Production
}

type Credentials struct {
	APIKey      string
	APIPassword string
}

// Client talks to the eWAY Rapid v3 REST API.
type Client struct {
	baseURL     string
	credentials Credentials
	httpClient  *http.Client
	errs        []string
}

// NewClient builds a client. Problems found here are recorded rather than returned so
// callers can inspect them through Errors before making any request.
func NewClient(credentials Credentials, env Environment, cfg config.GatewayConfig) *Client {
	c := &Client{
		credentials: credentials,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}

	switch env {
	case Sandbox:
		c.baseURL = cfg.SandboxURL
	case Production:
		c.baseURL = cfg.ProductionURL
	}
	if _, err := url.ParseRequestURI(c.baseURL); err != nil {
		c.errs = append(c.errs, CodeEndpointNotInitialised)
	}

	if credentials.APIKey == "" || credentials.APIPassword == "" {
		c.errs = append(c.errs, CodeCredentialsMissing)
	}

	return c
}

func (c *Client) Errors() []string {
	return c.errs
}

// CreateTransaction requests a responsive shared page access code.
func (c *Client) CreateTransaction(ctx context.Context, req domain.TransactionRequest) (*domain.GatewayResponse, error) {
	body := sharedPageRequest{
		Customer: toCustomerRequest(req.Customer),
		Payment: payment{
			TotalAmount:        req.TotalAmount,
			InvoiceNumber:      req.InvoiceNumber,
			InvoiceDescription: req.InvoiceDescription,
			InvoiceReference:   req.InvoiceReference,
		},
		RedirectURL:      req.RedirectURL,
		CancelURL:        req.CancelURL,
		Method:           transactionMethod(req),
		TransactionType:  transactionTypePurchase,
		CustomerIP:       req.CustomerIP,
		Capture:          req.Capture,
		CustomerReadOnly: req.CustomerReadOnly,
	}
	if req.ContributionID != 0 {
		body.Options = []option{{Value: strconv.FormatInt(req.ContributionID, 10)}}
	}

	resp, denied, err := sendRequest[sharedPageRequest, sharedPageResponse](ctx, c, http.MethodPost, "/AccessCodesShared", &body)
	if err != nil {
		return nil, err
	}
	if denied {
		return &domain.GatewayResponse{ErrorCodes: []string{CodeAuthenticationError}}, nil
	}
	if resp == nil {
		return nil, nil
	}

	out := &domain.GatewayResponse{
		AccessCode:       resp.AccessCode,
		SharedPaymentURL: resp.SharedPaymentURL,
		ErrorCodes:       splitCodes(resp.Errors),
	}
	if resp.Customer != nil {
		out.TokenCustomerID = resp.Customer.TokenCustomerID.String()
	}
	return out, nil
}

// QueryTransaction fetches the outcome of a shared page transaction by its access code.
func (c *Client) QueryTransaction(ctx context.Context, accessCode string) (*domain.TransactionResult, error) {
	path := "/AccessCode/" + url.PathEscape(accessCode)

	resp, denied, err := sendRequest[struct{}, accessCodeResponse](ctx, c, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if denied {
		return &domain.TransactionResult{AccessCode: accessCode, ErrorCodes: []string{CodeAuthenticationError}}, nil
	}
	if resp == nil {
		return nil, nil
	}

	return &domain.TransactionResult{
		AccessCode:      accessCode,
		TransactionID:   resp.TransactionID.String(),
		Succeeded:       resp.TransactionStatus,
		TokenCustomerID: resp.TokenCustomerID.String(),
		ResponseCodes:   splitCodes(resp.ResponseMessage),
		ErrorCodes:      splitCodes(resp.Errors),
	}, nil
}

// UpdateCustomer replaces the stored details of a token customer through the direct API.
func (c *Client) UpdateCustomer(ctx context.Context, customer domain.CustomerProfile) (*domain.GatewayResponse, error) {
	body := directRequest{
		Customer:        toCustomerRequest(customer),
		Payment:         payment{TotalAmount: 0},
		Method:          methodUpdateTokenCustomer,
		TransactionType: transactionTypePurchase,
	}

	resp, denied, err := sendRequest[directRequest, directResponse](ctx, c, http.MethodPost, "/Transaction", &body)
	if err != nil {
		return nil, err
	}
	if denied {
		return &domain.GatewayResponse{ErrorCodes: []string{CodeAuthenticationError}}, nil
	}
	if resp == nil {
		return nil, nil
	}

	out := &domain.GatewayResponse{ErrorCodes: splitCodes(resp.Errors)}
	if resp.Customer != nil {
		out.TokenCustomerID = resp.Customer.TokenCustomerID.String()
	}
	return out, nil
}

func transactionMethod(req domain.TransactionRequest) string {
	if !req.SaveCustomer {
		return methodProcessPayment
	}
	if req.TotalAmount == 0 {
		return methodCreateTokenCustomer
	}
	return methodTokenPayment
}

func toCustomerRequest(p domain.CustomerProfile) customerRequest {
	return customerRequest{
		TokenCustomerID: p.TokenCustomerID,
		Reference:       p.Reference,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Street1:         p.Street1,
		City:            p.City,
		State:           p.State,
		PostalCode:      p.PostalCode,
		Country:         p.Country,
		Email:           p.Email,
	}
}

// sendRequest performs one JSON round trip. denied is true when the gateway refused the
// credentials; a nil response with a nil error means the gateway returned no body.
func sendRequest[Req any, Resp any](ctx context.Context, c *Client, method, path string, reqBody *Req) (*Resp, bool, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, false, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, false, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.SetBasicAuth(c.credentials.APIKey, c.credentials.APIPassword)
	httpReq.Header.Set("Accept", "application/json")
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, false, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("error reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, true, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, false, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if len(bytes.TrimSpace(body)) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, false, nil
	}

	var out Resp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, false, fmt.Errorf("error decoding json response: %w", err)
	}

	return &out, false, nil
}
