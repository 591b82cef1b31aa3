package handlers

import (
	"net/http"

	"github.com/DanielPopoola/eway-recurring/internal/application/services"
	"github.com/DanielPopoola/eway-recurring/internal/interfaces/rest"
)

func subscriptionPath(r *http.Request) (int64, string, error) {
	processorID, err := pathInt64(r, "processorID")
	if err != nil {
		return 0, "", err
	}
	token, err := pathString(r, "token")
	if err != nil {
		return 0, "", err
	}
	return processorID, token, nil
}

func (h *Handlers) GetSubscription(w http.ResponseWriter, r *http.Request) {
	processorID, token, err := subscriptionPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	recur, err := h.queryService.GetSubscription(r.Context(), processorID, token)
	if err != nil {
		h.writeError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.DataResponse{
		Success: true,
		Data:    rest.ToAPISubscription(recur),
	})
}

// UpdateBilling replaces the card holder details stored against the token customer.
func (h *Handlers) UpdateBilling(w http.ResponseWriter, r *http.Request) {
	processorID, token, err := subscriptionPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req rest.BillingRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	cmd := services.UpdateBillingCommand{
		ProcessorID:       processorID,
		SubscriptionToken: token,
	}
	if _, err := h.billingService.UpdateBilling(r.Context(), cmd, req.ToPaymentParams(processorID, token)); err != nil {
		h.writeError(w, err)
		return
	}

	recur, err := h.queryService.GetSubscription(r.Context(), processorID, token)
	if err != nil {
		h.writeError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.DataResponse{
		Success: true,
		Data:    rest.ToAPISubscription(recur),
	})
}

func (h *Handlers) ChangeSchedule(w http.ResponseWriter, r *http.Request) {
	processorID, token, err := subscriptionPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req rest.ScheduleRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	recur, err := h.billingService.ChangeSchedule(r.Context(), services.ChangeScheduleCommand{
		ProcessorID:       processorID,
		SubscriptionToken: token,
		NextScheduledDate: req.NextScheduledDate,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.DataResponse{
		Success: true,
		Data:    rest.ToAPISubscription(recur),
	})
}

// CancelSubscription ends the series locally. The gateway keeps the token customer.
func (h *Handlers) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	processorID, token, err := subscriptionPath(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	recur, err := h.billingService.Cancel(r.Context(), services.CancelSubscriptionCommand{
		ProcessorID:       processorID,
		SubscriptionToken: token,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.DataResponse{
		Success: true,
		Data:    rest.ToAPISubscription(recur),
	})
}
