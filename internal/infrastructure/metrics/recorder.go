// Package metrics exposes Prometheus collectors for gateway calls and status transitions.
package metrics

import (
	"net/http"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	registry    *prometheus.Registry
	gatewayCall *prometheus.HistogramVec
	transitions *prometheus.CounterVec
}

func NewRecorder(namespace string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		gatewayCall: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Duration of eWAY Rapid API calls by operation and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Status changes applied to contributions and recurring series.",
		}, []string{"entity", "status"}),
	}

	r.registry.MustRegister(
		r.gatewayCall,
		r.transitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

var _ application.MetricsRecorder = (*Recorder)(nil)

func (r *Recorder) GatewayCall(operation, outcome string, elapsed time.Duration) {
	r.gatewayCall.WithLabelValues(operation, outcome).Observe(elapsed.Seconds())
}

func (r *Recorder) StatusTransition(entity string, to domain.ContributionStatus) {
	r.transitions.WithLabelValues(entity, string(to)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry is exposed for tests that gather collected values.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
