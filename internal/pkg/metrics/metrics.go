// Package metrics exposes the orchestrator's Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/remote"
)

type Registry struct {
	reg *prometheus.Registry

	RemoteCalls   *prometheus.CounterVec
	RemoteLatency *prometheus.HistogramVec
	Sagas         *prometheus.CounterVec
	SagaLatency   prometheus.Histogram
}

var _ remote.Observer = (*Registry)(nil)

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_remote_calls_total",
		Help: "Remote calls by target, method and outcome class.",
	}, []string{"target", "method", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_remote_call_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"target", "method"})
	sagas := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_sagas_total",
		Help: "Finished purchase sagas by outcome.",
	}, []string{"outcome"})
	sagaLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gateway_saga_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(calls, latency, sagas, sagaLatency)
	return &Registry{
		reg:           r,
		RemoteCalls:   calls,
		RemoteLatency: latency,
		Sagas:         sagas,
		SagaLatency:   sagaLatency,
	}
}

func (r *Registry) ObserveCall(target, method string, class remote.Class, elapsed time.Duration) {
	r.RemoteCalls.WithLabelValues(target, method, string(class)).Inc()
	r.RemoteLatency.WithLabelValues(target, method).Observe(elapsed.Seconds())
}

func (r *Registry) ObserveSaga(outcome string, elapsed time.Duration) {
	r.Sagas.WithLabelValues(outcome).Inc()
	r.SagaLatency.Observe(elapsed.Seconds())
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
