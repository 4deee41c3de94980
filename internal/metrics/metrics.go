// Package metrics holds the Prometheus collectors of the wallet service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lzar_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lzar_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
	}, []string{"method", "route"})

	GatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lzar_gateway_request_duration_seconds",
		Help:    "Latency of settlement gateway calls",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	}, []string{"operation", "outcome"})

	// LedgerTransitionsTotal counts committed status changes of transactions and charges.
	LedgerTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lzar_ledger_transitions_total",
		Help: "Committed record status transitions",
	}, []string{"record", "status"})

	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lzar_webhook_events_total",
		Help: "Settlement webhook deliveries by event type and outcome",
	}, []string{"type", "outcome"})

	// LedgerAnomaliesTotal counts records left pending because a local write failed
	// after the gateway answered.
	LedgerAnomaliesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lzar_ledger_anomalies_total",
		Help: "Records that could not be reconciled after a gateway response",
	})
)

// Record labels for LedgerTransitionsTotal
const (
	RecordTransaction = "transaction"
	RecordCharge      = "charge"
)
