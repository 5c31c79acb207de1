// Package metrics concentra os coletores Prometheus do gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestsTotal conta requisições HTTP por método, rota e status.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_gateway_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_gateway_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// LookupsTotal conta consultas por desfecho (found, not_found, queue_full...) e origem.
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_gateway_lookups_total",
			Help: "Character lookups by status and source",
		},
		[]string{"status", "source"},
	)

	// UpstreamRequestsTotal conta chamadas ao ranking por tipo (overall/legion) e status HTTP.
	// status "error" quando não houve resposta.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_gateway_upstream_requests_total",
			Help: "Outbound ranking API calls by kind and status",
		},
		[]string{"kind", "status"},
	)

	SchedulerPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ranking_gateway_scheduler_pending",
			Help: "Upstream tasks admitted and not yet finished",
		},
	)

	SchedulerWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_gateway_scheduler_wait_seconds",
			Help:    "Time an upstream task waited in the queue before starting",
			Buckets: []float64{0, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	SchedulerRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_gateway_scheduler_rejected_total",
			Help: "Upstream tasks rejected because the queue was full",
		},
	)

	// CacheFallbackTotal conta operações que caíram na camada local por falha do Redis.
	CacheFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_gateway_cache_fallback_total",
			Help: "Cache operations served by the fallback tier after a primary failure",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDurationSeconds,
		LookupsTotal,
		UpstreamRequestsTotal,
		SchedulerPending,
		SchedulerWaitSeconds,
		SchedulerRejectedTotal,
		CacheFallbackTotal,
	)
}
