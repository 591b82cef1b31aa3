package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

// DefaultGatewayTimeout bounds a gateway call when no timeout is configured.
const DefaultGatewayTimeout = 30 * time.Second

const (
	outcomeOK        = "ok"
	outcomeRejected  = "rejected"
	outcomeTransport = "transport_error"
)

// RequestMutator may change any field of an outgoing transaction request.
type RequestMutator func(domain.TransactionRequest) domain.TransactionRequest

// CustomerMutator may change any field of an outgoing customer update.
type CustomerMutator func(domain.CustomerProfile) domain.CustomerProfile

// callGateway runs one bounded gateway call and converts every failure into a transport error.
// A nil response with no error is reported as "no data returned". rejected classifies a
// delivered response for the call metrics.
func callGateway[T any](
	ctx context.Context,
	timeout time.Duration,
	metrics application.MetricsRecorder,
	operation string,
	call func(ctx context.Context) (*T, error),
	rejected func(*T) bool,
) (*T, error) {
	if timeout <= 0 {
		timeout = DefaultGatewayTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := call(callCtx)
	elapsed := time.Since(start)

	if err != nil {
		metrics.GatewayCall(operation, outcomeTransport, elapsed)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, domain.NewTransportError(
				fmt.Sprintf("eWAY did not respond within %s", timeout),
				errors.Join(context.DeadlineExceeded, err),
			)
		}
		return nil, domain.NewTransportError("Error communicating with eWAY", err)
	}
	if resp == nil {
		metrics.GatewayCall(operation, outcomeTransport, elapsed)
		return nil, domain.NewTransportError("no data returned", nil)
	}

	outcome := outcomeOK
	if rejected(resp) {
		outcome = outcomeRejected
	}
	metrics.GatewayCall(operation, outcome, elapsed)

	return resp, nil
}

// clientFor fetches the processor's client and refuses one that recorded setup errors.
func clientFor(ctx context.Context, gateways application.GatewayProvider, messages application.ErrorMessages, processorID int64) (application.GatewayClient, error) {
	client, err := gateways.Client(ctx, processorID)
	if err != nil {
		return nil, err
	}
	if errs := client.Errors(); len(errs) > 0 {
		return nil, domain.NewClientInitError(mapMessages(messages, errs))
	}
	return client, nil
}

// mapMessages keeps the gateway's ordering; an empty result means success.
func mapMessages(messages application.ErrorMessages, codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		out = append(out, messages.Message(code))
	}
	return out
}

func responseRejected(resp *domain.GatewayResponse) bool {
	return len(resp.ErrorCodes) > 0
}
