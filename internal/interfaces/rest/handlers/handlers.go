package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/application/services"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/DanielPopoola/eway-recurring/internal/interfaces/rest"
	"github.com/go-playground/validator"
	"github.com/oapi-codegen/runtime"
)

const maxBodyBytes = 1 << 20

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	submitService  *services.SubmitService
	confirmService *services.ConfirmService
	billingService *services.BillingService
	queryService   *services.QueryService
	returnURLs     services.ReturnURLs
	db             Pinger
	validate       *validator.Validate
	logger         *slog.Logger
}

func NewHandlers(
	submitService *services.SubmitService,
	confirmService *services.ConfirmService,
	billingService *services.BillingService,
	queryService *services.QueryService,
	returnURLs services.ReturnURLs,
	db Pinger,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		submitService:  submitService,
		confirmService: confirmService,
		billingService: billingService,
		queryService:   queryService,
		returnURLs:     returnURLs,
		db:             db,
		validate:       validator.New(),
		logger:         logger,
	}
}

// Register mounts every route on mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /contributions/{id}/payments", h.SubmitPayment)
	mux.HandleFunc("GET /contributions/{id}", h.GetContribution)
	mux.HandleFunc("GET /ewayrecurring/verifypayment", h.VerifyPayment)
	mux.HandleFunc("GET /processors/{processorID}/subscriptions/{token}", h.GetSubscription)
	mux.HandleFunc("PUT /processors/{processorID}/subscriptions/{token}/billing", h.UpdateBilling)
	mux.HandleFunc("PATCH /processors/{processorID}/subscriptions/{token}/schedule", h.ChangeSchedule)
	mux.HandleFunc("POST /processors/{processorID}/subscriptions/{token}/cancel", h.CancelSubscription)
	mux.HandleFunc("GET /health", h.Health)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		rest.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	rest.WriteError(w, err, h.logger)
}

// decode reads a JSON body and runs the struct's validate tags.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return application.NewInvalidInputError(err)
	}
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return domain.NewValidationError(err.Error())
		}
		validationErr := domain.NewValidationError("request body failed validation")
		for _, fe := range fieldErrs {
			validationErr.Details = append(validationErr.Details, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
		return validationErr
	}
	return nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	var v int64
	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, r.PathValue(name), &v)
	if err != nil || v <= 0 {
		return 0, domain.NewValidationError(fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

func pathString(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, r.PathValue(name), &v)
	if err != nil || v == "" {
		return "", domain.NewValidationError(fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

func remoteIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
