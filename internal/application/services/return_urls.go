package services

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

// ReturnURLs builds the addresses the hosted payment page sends the payer back to.
type ReturnURLs struct {
	base string
}

func NewReturnURLs(publicBaseURL string) ReturnURLs {
	return ReturnURLs{base: strings.TrimRight(publicBaseURL, "/")}
}

// Success is where the gateway redirects after payment. Back-office submissions come
// back through the verification endpoint so the contribution is confirmed before display.
func (u ReturnURLs) Success(params domain.PaymentParams) string {
	if params.FromContributionPage() {
		if params.SuccessURL != "" {
			return params.SuccessURL
		}
		return u.ThankYou(params.QFKey)
	}

	q := url.Values{}
	q.Set("contributionInvoiceID", params.InvoiceID)
	q.Set("qfKey", params.QFKey)
	q.Set("paymentProcessorID", strconv.FormatInt(params.PaymentProcessorID, 10))
	return u.base + "/ewayrecurring/verifypayment?" + q.Encode()
}

// Cancel is where the payer lands after abandoning the hosted page.
func (u ReturnURLs) Cancel(params domain.PaymentParams) string {
	if params.FromContributionPage() {
		if params.CancelURL != "" {
			return params.CancelURL
		}
		return u.Fail(params.QFKey)
	}

	q := url.Values{}
	q.Set("action", "add")
	q.Set("cid", strconv.FormatInt(params.ContactID, 10))
	q.Set("context", "contribution")
	q.Set("mode", "live")
	return u.base + "/contribution/add?" + q.Encode()
}

// ThankYou is the confirmation page for a completed contribution.
func (u ReturnURLs) ThankYou(qfKey string) string {
	q := url.Values{}
	q.Set("_qf_ThankYou_display", "1")
	q.Set("qfKey", qfKey)
	return u.base + "/contribute/transact?" + q.Encode()
}

// Fail returns the payer to the contribution form.
func (u ReturnURLs) Fail(qfKey string) string {
	q := url.Values{}
	q.Set("_qf_Main_display", "1")
	q.Set("cancel", "1")
	q.Set("qfKey", qfKey)
	return u.base + "/contribute/transact?" + q.Encode()
}
