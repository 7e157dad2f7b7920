// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "api_http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route", "method"},
	)

	MLRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ml_service_requests_total",
			Help: "Total number of requests sent to the ML service",
		},
		[]string{"endpoint", "outcome"},
	)

	MLRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ml_service_request_duration_seconds",
			Help: "Duration of ML service calls in seconds",
		},
		[]string{"endpoint"},
	)

	AnalysisCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_cache_hits_total",
			Help: "ML analysis cache lookups by result",
		},
		[]string{"analysis_type", "result"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notifications dispatched by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)
)
