// Package metrics exposes Prometheus counters/gauges/histograms shared by
// both roles. This is an ambient addition (see SPEC_FULL.md §4.10): the
// teacher's server/go.mod lists client_golang as a direct dependency even
// though spec.md itself never mentions metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every metric this process exposes.
type Registry struct {
	reg *prometheus.Registry

	JobTransitions     *prometheus.CounterVec
	TickDuration       *prometheus.HistogramVec
	InFlightByQuota    *prometheus.GaugeVec
	PayloadTransitions *prometheus.CounterVec
}

// New builds a fresh Registry with all metrics registered.
func New(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		JobTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_transitions_total",
			Help:      "Count of job status transitions by destination status.",
		}, []string{"status"}),
		TickDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Duration of one periodic task iteration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"}),
		InFlightByQuota: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inflight_jobs",
			Help:      "In-flight job count per (user_id, service), for quota observability.",
		}, []string{"user_id", "service"}),
		PayloadTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payload_transitions_total",
			Help:      "Count of payload status transitions by destination status.",
		}, []string{"status"}),
	}
}

// Handler returns the http.Handler serving this registry in exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
