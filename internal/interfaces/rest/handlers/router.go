package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/interfaces/rest"
	"github.com/DanielPopoola/eway-recurring/internal/interfaces/rest/middleware"
	"github.com/getkin/kin-openapi/openapi3"
)

// NewRouter mounts the API, the contract and the metrics endpoint behind the middleware
// chain. metrics may be nil.
func NewRouter(h *Handlers, doc *openapi3.T, metrics http.Handler, requestTimeout time.Duration, logger *slog.Logger) (http.Handler, error) {
	mux := http.NewServeMux()
	h.Register(mux)
	mux.Handle("GET /openapi.json", rest.OpenAPIHandler(doc))
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	validate, err := middleware.OpenAPIValidation(doc, logger)
	if err != nil {
		return nil, err
	}

	handler := validate(mux)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(requestTimeout)(handler)
	return handler, nil
}
