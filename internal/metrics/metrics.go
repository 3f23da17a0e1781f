// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TendersClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tender_classified_total",
			Help: "Total number of tenders classified, by relevance",
		},
		[]string{"relevance"},
	)

	BidDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tender_decisions_total",
			Help: "Total number of bid decisions made, by label",
		},
		[]string{"label"},
	)

	PayloadLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tender_payload_loads_total",
			Help: "Total number of payload loads, by the source that served them",
		},
		[]string{"source"},
	)

	PayloadSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tender_payload_source_failures_total",
			Help: "Total number of failed attempts to read a payload source",
		},
		[]string{"source"},
	)

	RateLimitedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tender_http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tender_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)
