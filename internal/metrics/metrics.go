// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "splitpay"

var (
	transfers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "settlement",
		Name:      "transfers_total",
		Help:      "Settlement transfers by outcome.",
	}, []string{"status"})

	transferredAmount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "settlement",
		Name:      "transferred_amount_total",
		Help:      "Sum of successfully recorded transfer amounts, in currency units.",
	})

	submitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "settlement",
		Name:      "submit_duration_seconds",
		Help:      "Time spent waiting on the payment executor per transfer.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	batches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "settlement",
		Name:      "batches_total",
		Help:      "Settlement batches by outcome (complete, partial, noop, error, in_progress, unreconciled).",
	}, []string{"outcome"})

	plans = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "settlement",
		Name:      "plans_total",
		Help:      "Settlement plans computed, by status.",
	}, []string{"status"})

	rpcRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "requests_total",
		Help:      "RPC requests by procedure and result code.",
	}, []string{"procedure", "code"})

	rpcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "request_duration_seconds",
		Help:      "RPC latency by procedure.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure"})
)

// ObserveTransfer counts one transfer outcome. Amounts are only accumulated
// for successful transfers.
func ObserveTransfer(status string, amount decimal.Decimal) {
	transfers.WithLabelValues(status).Inc()
	if status == "succeeded" {
		transferredAmount.Add(amount.InexactFloat64())
	}
}

// ObserveSubmit records how long a payment submission took.
func ObserveSubmit(d time.Duration) {
	submitDuration.Observe(d.Seconds())
}

// ObserveBatch counts a finished (or refused) settlement batch.
func ObserveBatch(outcome string) {
	batches.WithLabelValues(outcome).Inc()
}

// ObservePlan counts a computed plan by status.
func ObservePlan(status string) {
	plans.WithLabelValues(status).Inc()
}

// ObserveRPC records one served RPC.
func ObserveRPC(procedure, code string, d time.Duration) {
	rpcRequests.WithLabelValues(procedure, code).Inc()
	rpcDuration.WithLabelValues(procedure).Observe(d.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
