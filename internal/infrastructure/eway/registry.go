package eway

import (
	"context"
	"log/slog"
	"sync"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/config"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

// ProcessorStore loads payment processor credentials.
type ProcessorStore interface {
	FindByID(ctx context.Context, id int64) (*domain.PaymentProcessor, error)
}

// Registry builds one client per payment processor and reuses it. It is owned by the
// caller and passed to the services that need it.
type Registry struct {
	processors ProcessorStore
	cfg        config.GatewayConfig
	logger     *slog.Logger

	mu      sync.Mutex
	clients map[int64]*Client
}

func NewRegistry(processors ProcessorStore, cfg config.GatewayConfig, logger *slog.Logger) *Registry {
	return &Registry{
		processors: processors,
		cfg:        cfg,
		logger:     logger,
		clients:    make(map[int64]*Client),
	}
}

var _ application.GatewayProvider = (*Registry)(nil)

// Client returns the cached client for processorID, building it on first use.
// Processors with missing credentials fail with a client initialisation error.
func (r *Registry) Client(ctx context.Context, processorID int64) (application.GatewayClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[processorID]; ok {
		return client, nil
	}

	processor, err := r.processors.FindByID(ctx, processorID)
	if err != nil {
		return nil, err
	}

	if cfgErrs := processor.ConfigErrors(); len(cfgErrs) > 0 {
		r.logger.Error("payment processor is misconfigured",
			"processor_id", processorID,
			"errors", cfgErrs)
		return nil, domain.NewClientInitError(cfgErrs)
	}

	env := EnvironmentFor(processor.IsTest)
	client := NewClient(Credentials{
		APIKey:      processor.APIKey,
		APIPassword: processor.APIPassword,
	}, env, r.cfg)

	if len(client.Errors()) > 0 {
		// Hand the client back so the caller can report its errors, but do not cache it.
		return client, nil
	}

	r.logger.Info("created eway client",
		"processor_id", processorID,
		"environment", env)
	r.clients[processorID] = client

	return client, nil
}

// Forget drops a cached client, for example after its credentials change.
func (r *Registry) Forget(processorID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, processorID)
}
