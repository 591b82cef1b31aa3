package eway

import (
	"encoding/json"
	"strings"
)

// Rapid v3 wire types. Field names follow the gateway's JSON exactly.

type customerRequest struct {
	TokenCustomerID string `json:"TokenCustomerID,omitempty"`
	Reference       string `json:"Reference,omitempty"`
	FirstName       string `json:"FirstName"`
	LastName        string `json:"LastName"`
	Street1         string `json:"Street1"`
	City            string `json:"City"`
	State           string `json:"State"`
	PostalCode      string `json:"PostalCode"`
	Country         string `json:"Country"`
	Email           string `json:"Email,omitempty"`
}

type customerResponse struct {
	TokenCustomerID json.Number `json:"TokenCustomerID"`
	Reference       string      `json:"Reference"`
}

type payment struct {
	TotalAmount        int64  `json:"TotalAmount"`
	InvoiceNumber      string `json:"InvoiceNumber,omitempty"`
	InvoiceDescription string `json:"InvoiceDescription,omitempty"`
	InvoiceReference   string `json:"InvoiceReference,omitempty"`
}

type option struct {
	Value string `json:"Value"`
}

type sharedPageRequest struct {
	Customer         customerRequest `json:"Customer"`
	Payment          payment         `json:"Payment"`
	RedirectURL      string          `json:"RedirectUrl"`
	CancelURL        string          `json:"CancelUrl"`
	Method           string          `json:"Method"`
	TransactionType  string          `json:"TransactionType"`
	CustomerIP       string          `json:"CustomerIP,omitempty"`
	Capture          bool            `json:"Capture"`
	Options          []option        `json:"Options,omitempty"`
	CustomerReadOnly bool            `json:"CustomerReadOnly"`
}

type sharedPageResponse struct {
	AccessCode       string            `json:"AccessCode"`
	SharedPaymentURL string            `json:"SharedPaymentUrl"`
	Customer         *customerResponse `json:"Customer"`
	Errors           *string           `json:"Errors"`
}

type accessCodeResponse struct {
	AccessCode        string      `json:"AccessCode"`
	TransactionID     json.Number `json:"TransactionID"`
	TransactionStatus bool        `json:"TransactionStatus"`
	TokenCustomerID   json.Number `json:"TokenCustomerID"`
	ResponseCode      *string     `json:"ResponseCode"`
	ResponseMessage   *string     `json:"ResponseMessage"`
	Errors            *string     `json:"Errors"`
}

type directRequest struct {
	Customer        customerRequest `json:"Customer"`
	Payment         payment         `json:"Payment"`
	Method          string          `json:"Method"`
	TransactionType string          `json:"TransactionType"`
}

type directResponse struct {
	Customer        *customerResponse `json:"Customer"`
	ResponseMessage *string           `json:"ResponseMessage"`
	Errors          *string           `json:"Errors"`
}

const (
	methodProcessPayment      = "ProcessPayment"
	methodTokenPayment        = "TokenPayment"
	methodCreateTokenCustomer = "CreateTokenCustomer"
	methodUpdateTokenCustomer = "UpdateTokenCustomer"

	transactionTypePurchase = "Purchase"
)

// splitCodes turns the gateway's comma separated code list into a slice.
func splitCodes(codes *string) []string {
	if codes == nil {
		return nil
	}
	var out []string
	for _, code := range strings.Split(*codes, ",") {
		if code = strings.TrimSpace(code); code != "" {
			out = append(out, code)
		}
	}
	return out
}
