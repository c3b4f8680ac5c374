// Package metrics exposes the Prometheus registry every component
// pushes counters and histograms into. A single set of package-level
// collectors is registered once; this is the one process-wide
// singleton the spec tolerates, matching prometheus/client_golang's
// own idiom in the rest of the pack.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "artemis_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	EvaluationStage = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artemis_evaluation_stage_total",
		Help: "Evaluation pipeline stage completions by stage and outcome.",
	}, []string{"stage", "outcome"})

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "artemis_evaluation_duration_seconds",
		Help:    "End-to-end evaluation pipeline latency for cache-miss runs.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	EvaluationCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artemis_evaluation_cache_total",
		Help: "Evaluation cache lookups by result.",
	}, []string{"result"})

	PaymentWebhooks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artemis_payment_webhook_total",
		Help: "Payment gateway webhook deliveries by event type and outcome.",
	}, []string{"event_type", "outcome"})

	WebsocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "artemis_realtime_connections",
		Help: "Currently connected realtime notification channels.",
	})

	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artemis_notifications_emitted_total",
		Help: "Notifications emitted by type.",
	}, []string{"type"})
)
