package handlers

import (
	"net/http"

	"github.com/DanielPopoola/eway-recurring/internal/interfaces/rest"
)

// SubmitPayment creates the hosted payment page for a contribution and returns the URL
// the payer must be sent to.
func (h *Handlers) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	contributionID, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req rest.PaymentRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	target, err := h.submitService.Submit(r.Context(), contributionID, req.ToPaymentParams(contributionID, remoteIP(r)))
	if err != nil {
		h.writeError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.DataResponse{
		Success: true,
		Data:    rest.ToRedirectData(target),
	})
}

func (h *Handlers) GetContribution(w http.ResponseWriter, r *http.Request) {
	contributionID, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	contribution, err := h.queryService.GetContribution(r.Context(), contributionID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.DataResponse{
		Success: true,
		Data:    rest.ToAPIContribution(contribution),
	})
}
