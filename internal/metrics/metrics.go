// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CollectionEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_events_total",
			Help: "Total number of collection change events dispatched",
		},
		[]string{"collection"},
	)

	SyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncs_total",
			Help: "Total number of coordinator sync passes by trigger",
		},
		[]string{"trigger"},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of one coordinator re-fetch pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
