package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Checkout flow
	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evmarket_checkouts_total",
		Help: "Checkout attempts by payment method and final client-observed stage",
	}, []string{"method", "stage"})

	CheckoutFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evmarket_checkout_failures_total",
		Help: "Classified checkout failures by kind",
	}, []string{"kind"})

	GatewayHandoffsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evmarket_gateway_handoffs_total",
		Help: "External payment handoffs by opened URL kind",
	}, []string{"via"})

	DanglingPendingTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evmarket_dangling_pending_transactions_total",
		Help: "Transactions left PENDING after a failed second phase",
	})

	// Backend calls
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evmarket_backend_requests_total",
		Help: "Requests sent to the marketplace backend",
	}, []string{"operation", "status"})

	BackendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evmarket_backend_latency_seconds",
		Help:    "Latency of marketplace backend calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	SessionInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evmarket_session_invalidations_total",
		Help: "Sessions cleared after the backend answered 401",
	})

	// BFF HTTP surface
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evmarket_bff_http_requests_total",
		Help: "HTTP requests served by the BFF",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evmarket_bff_http_request_duration_seconds",
		Help:    "Duration of HTTP requests served by the BFF",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
