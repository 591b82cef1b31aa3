package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/application/services"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/oapi-codegen/runtime"
)

// VerifyPaymentParams are the query parameters of the redirect callback. The gateway
// appends AccessCode to the return URL it was given.
type VerifyPaymentParams struct {
	AccessCode            string
	ContributionInvoiceID *string
	QfKey                 *string
	PaymentProcessorID    *int64
}

func bindVerifyPaymentParams(query url.Values) (VerifyPaymentParams, error) {
	var params VerifyPaymentParams

	if err := runtime.BindQueryParameter("form", true, true, "AccessCode", query, &params.AccessCode); err != nil {
		return params, domain.NewValidationError("access code is required")
	}
	if err := runtime.BindQueryParameter("form", true, false, "contributionInvoiceID", query, &params.ContributionInvoiceID); err != nil {
		return params, domain.NewValidationError("invalid contributionInvoiceID")
	}
	if err := runtime.BindQueryParameter("form", true, false, "qfKey", query, &params.QfKey); err != nil {
		return params, domain.NewValidationError("invalid qfKey")
	}
	if err := runtime.BindQueryParameter("form", true, false, "paymentProcessorID", query, &params.PaymentProcessorID); err != nil {
		return params, domain.NewValidationError("invalid paymentProcessorID")
	}

	return params, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// VerifyPayment is where the hosted page sends the payer back. The contribution is
// confirmed before the payer is redirected to the thank-you page or back to the form.
func (h *Handlers) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	params, err := bindVerifyPaymentParams(r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}
	qfKey := deref(params.QfKey)

	result, err := h.confirmService.Confirm(r.Context(), services.ConfirmCommand{
		AccessCode:  params.AccessCode,
		InvoiceID:   deref(params.ContributionInvoiceID),
		ProcessorID: deref(params.PaymentProcessorID),
	})
	switch {
	case err == nil:
		if result.Succeeded {
			http.Redirect(w, r, h.returnURLs.ThankYou(qfKey), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, withMessage(h.returnURLs.Fail(qfKey), strings.Join(result.Messages, "; ")), http.StatusSeeOther)

	case errors.Is(err, domain.ErrAlreadyFinalized):
		h.redirectFinalized(w, r, params.AccessCode, qfKey)

	case errors.Is(err, domain.ErrValidation):
		h.writeError(w, err)

	default:
		h.logger.Error("payment verification failed",
			"access_code", params.AccessCode,
			"category", application.CategorizeError(err),
			"error", err,
		)
		http.Redirect(w, r, withMessage(h.returnURLs.Fail(qfKey), application.PublicMessage(err)), http.StatusSeeOther)
	}
}

// redirectFinalized handles a payer reloading the return page after the contribution
// was already confirmed.
func (h *Handlers) redirectFinalized(w http.ResponseWriter, r *http.Request, accessCode, qfKey string) {
	contribution, err := h.queryService.GetContributionByAccessCode(r.Context(), accessCode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if contribution.Status == domain.StatusCompleted {
		http.Redirect(w, r, h.returnURLs.ThankYou(qfKey), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.returnURLs.Fail(qfKey), http.StatusSeeOther)
}

func withMessage(target, message string) string {
	if message == "" {
		return target
	}
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set("message", message)
	u.RawQuery = q.Encode()
	return u.String()
}
