// Package monitor exposes Prometheus metrics for the relay pipeline.
package monitor

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	relayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_relay_requests_total",
		Help: "Relay requests by HTTP status and requested model.",
	}, []string{"status", "model"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_backend_latency_seconds",
		Help:    "Latency of Bedrock Converse calls, end to end per request.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"model"})
)

// RecordRelayRequest counts one finished relay request.
func RecordRelayRequest(status int, model string) {
	relayRequests.WithLabelValues(strconv.Itoa(status), model).Inc()
}

// ObserveBackendLatency records the end-to-end duration of one Converse
// invocation. Requests rejected before reaching the backend must not be
// observed here, so the histogram only ever measures backend calls.
func ObserveBackendLatency(model string, start time.Time) {
	backendLatency.WithLabelValues(model).Observe(time.Since(start).Seconds())
}
