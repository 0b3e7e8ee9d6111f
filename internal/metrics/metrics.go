// Package metrics holds the Prometheus collectors for the swap engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SwapTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swap_engine_swaps_total",
		Help: "Swap executions by chain and terminal status",
	}, []string{"chain", "status"})

	SwapDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swap_engine_swap_duration_seconds",
		Help:    "End to end swap pipeline duration",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"chain"})

	WithdrawTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swap_engine_withdrawals_total",
		Help: "Native withdrawals by chain and terminal status",
	}, []string{"chain", "status"})

	QuoteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swap_engine_quote_requests_total",
		Help: "Price provider calls by provider and outcome",
	}, []string{"provider", "status"})

	ProviderFallbackDepth = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swap_engine_provider_fallback_depth",
		Help:    "How many providers were tried before a quote was served",
		Buckets: []float64{1, 2, 3, 4, 5},
	})

	SubmitRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swap_engine_submit_retries_total",
		Help: "Rebuild and resubmit attempts after a rejected broadcast",
	}, []string{"chain"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swap_engine_http_requests_total",
		Help: "HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swap_engine_http_request_duration_seconds",
		Help:    "HTTP handler latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)
